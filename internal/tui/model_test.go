package tui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbonatakis/studydesk/internal/chat"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/session"
	"github.com/jbonatakis/studydesk/internal/stream"
	"github.com/jbonatakis/studydesk/internal/summary"
)

const lessonText = "Enzymes speed up chemical reactions. They are not consumed by the reaction."

type fakeService struct {
	uploadErr  error
	streamWire string
	quiz       genclient.Quiz
}

func (f *fakeService) UploadDocument(ctx context.Context, filename string, content io.Reader) (genclient.UploadResult, error) {
	if f.uploadErr != nil {
		return genclient.UploadResult{}, f.uploadErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return genclient.UploadResult{}, err
	}
	return genclient.UploadResult{Filename: filename, Text: string(data)}, nil
}

func (f *fakeService) GenerateSummary(ctx context.Context, text string) (genclient.Summary, error) {
	return genclient.Summary{
		QuickNotes:   []string{"Enzymes are catalysts."},
		KeyTakeaways: []string{"Enzymes are reusable."},
	}, nil
}

func (f *fakeService) SendChat(ctx context.Context, content string, contextText string) (string, error) {
	return "plain reply", nil
}

func (f *fakeService) StreamChat(ctx context.Context, content string, contextText string) (*stream.Reader, error) {
	return stream.NewReader(io.NopCloser(strings.NewReader(f.streamWire)), stream.WithReadSize(5)), nil
}

func (f *fakeService) GenerateQuiz(ctx context.Context, text string, numQuestions int) (genclient.Quiz, error) {
	return f.quiz, nil
}

func twoQuestions() genclient.Quiz {
	return genclient.Quiz{
		ID: "quiz-1",
		Questions: []genclient.QuizQuestion{
			{ID: "1", Question: "What do enzymes do?", Options: []string{"speed reactions", "stop reactions", "store energy", "carry oxygen"}, CorrectAnswer: 0, Explanation: "They are catalysts."},
			{ID: "2", Question: "Are enzymes consumed?", Options: []string{"yes", "no", "sometimes", "only in plants"}, CorrectAnswer: 1, Explanation: "They are reusable."},
		},
	}
}

func newTestModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	engine := session.New(svc, session.Options{Streaming: true, Greet: true})
	t.Cleanup(engine.Close)
	m := NewModel(Config{
		Engine:       engine,
		Uploader:     svc,
		NumQuestions: 2,
		ExportDir:    t.TempDir(),
	})
	m.windowWidth = 100
	m.windowHeight = 30
	return m
}

func writeLesson(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enzymes.txt")
	if err := os.WriteFile(path, []byte(lessonText), 0o644); err != nil {
		t.Fatalf("write lesson: %v", err)
	}
	return path
}

// drain runs cmd and feeds every resulting message back into the model until
// no work is left. Spinner ticks and cursor blinks are dropped so the loop
// terminates.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatalf("model did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinnerTickMsg, cursor.BlinkMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, more := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	return drain(t, updated.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := newTestModel(t, svc)
	m.initialPath = writeLesson(t)
	return drain(t, m, m.Init())
}

func TestInitialPathLoadsDocumentAndSummary(t *testing.T) {
	m := loadedModel(t, &fakeService{})

	doc, ok := m.engine.Document()
	if !ok || doc.Name != "enzymes.txt" {
		t.Fatalf("expected enzymes.txt loaded, got %+v", doc)
	}
	if m.actionInProgress {
		t.Fatalf("expected load to finish")
	}
	if got := m.engine.Summary().Status; got != summary.StatusReady {
		t.Fatalf("summary status = %v, want ready", got)
	}
	view := m.View()
	for _, want := range []string{"Quick Notes", "Enzymes are catalysts.", "Key Takeaways", "enzymes.txt"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestOpenDocumentFromPrompt(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	path := writeLesson(t)

	m = press(t, m, runes("o"))
	if m.inputMode != InputOpen {
		t.Fatalf("expected open prompt, got mode %v", m.inputMode)
	}
	m = press(t, m, runes(path))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.inputMode != InputNone {
		t.Fatalf("expected prompt closed")
	}
	if _, ok := m.engine.Document(); !ok {
		t.Fatalf("expected document loaded")
	}
}

func TestOpenFailureShowsDetail(t *testing.T) {
	svc := &fakeService{uploadErr: &genclient.ServiceError{Status: http.StatusBadRequest, Detail: "Unsupported file type"}}
	m := loadedModel(t, svc)

	if _, ok := m.engine.Document(); ok {
		t.Fatalf("expected no document after failed upload")
	}
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected error output, got %+v", m.actionOutput)
	}
	if !strings.Contains(m.actionOutput.Message, "Unsupported file type") {
		t.Fatalf("message = %q", m.actionOutput.Message)
	}
}

func TestExperiencesIgnoreKeysWithoutDocument(t *testing.T) {
	m := newTestModel(t, &fakeService{})

	m = press(t, m, runes("g"))
	if m.engine.Summary().Status != summary.StatusAbsent {
		t.Fatalf("expected summary untouched without a document")
	}
	if !strings.Contains(m.View(), "Press o to open") {
		t.Fatalf("expected open hint in view")
	}
	bar := RenderBottomBar(m)
	if strings.Contains(bar, "[g]enerate") {
		t.Fatalf("expected no generate hint without document, got %q", bar)
	}
}

func TestTabCycles(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabChat {
		t.Fatalf("tab = %v, want chat", m.tab)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabSummary {
		t.Fatalf("tab = %v, want summary after wrap", m.tab)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabQuiz {
		t.Fatalf("tab = %v, want quiz", m.tab)
	}
}

func TestChatStreamsReplyIntoTranscript(t *testing.T) {
	svc := &fakeService{streamWire: "data: {\"type\":\"chunk\",\"content\":\"They speed \"}\n\n" +
		"data: {\"type\":\"chunk\",\"content\":\"reactions.\"}\n\n" +
		"data: {\"type\":\"done\"}\n\n"}
	m := loadedModel(t, svc)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("i"))
	if m.inputMode != InputChat {
		t.Fatalf("expected chat input mode")
	}
	m = press(t, m, runes("What do enzymes do?"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.engine.ChatBusy() {
		t.Fatalf("expected turn closed")
	}
	msgs := m.engine.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected greeting, question and reply, got %d", len(msgs))
	}
	if msgs[1].Role != chat.RoleUser || msgs[1].Content != "What do enzymes do?" {
		t.Fatalf("unexpected user message %+v", msgs[1])
	}
	if msgs[2].Content != "They speed reactions." {
		t.Fatalf("reply = %q", msgs[2].Content)
	}
	if m.chatInput.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.chatInput.Value())
	}
	if !strings.Contains(m.View(), "They speed reactions.") {
		t.Fatalf("expected reply in view")
	}
}

func TestChatStreamErrorShowsApology(t *testing.T) {
	svc := &fakeService{streamWire: "data: {\"type\":\"chunk\",\"content\":\"partial\"}\n\n" +
		"data: {\"type\":\"error\",\"content\":\"model overloaded\"}\n\n"}
	m := loadedModel(t, svc)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("i"))
	m = press(t, m, runes("hi"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	msgs := m.engine.Messages()
	if got := msgs[len(msgs)-1].Content; got != chat.ApologyMessage {
		t.Fatalf("reply = %q, want apology", got)
	}
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected error output")
	}
}

func TestEmptyChatMessageIsIgnored(t *testing.T) {
	m := loadedModel(t, &fakeService{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("i"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := len(m.engine.Messages()); got != 1 {
		t.Fatalf("expected only the greeting, got %d messages", got)
	}
	if m.actionOutput != nil && m.actionOutput.IsError {
		t.Fatalf("unexpected error %q", m.actionOutput.Message)
	}
}

func TestQuizFlow(t *testing.T) {
	m := loadedModel(t, &fakeService{quiz: twoQuestions()})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabQuiz {
		t.Fatalf("tab = %v, want quiz", m.tab)
	}

	m = press(t, m, runes("g"))
	if got := m.engine.Quiz().State(); got != quiz.StateActive {
		t.Fatalf("quiz state = %v, want active", got)
	}
	if !strings.Contains(m.View(), "Question 1 of 2") {
		t.Fatalf("expected first question in view:\n%s", m.View())
	}

	m = press(t, m, runes("n"))
	if m.engine.Quiz().CurrentIndex() != 0 {
		t.Fatalf("expected next to be refused before answering")
	}
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected refused step to be reported")
	}

	m = press(t, m, runes("a"))
	m = press(t, m, runes("n"))
	m = press(t, m, runes("2"))
	m = press(t, m, runes("s"))
	s := m.engine.Quiz()
	if s.State() != quiz.StateResults {
		t.Fatalf("quiz state = %v, want results", s.State())
	}
	if score, _ := s.Score(); score != 100 {
		t.Fatalf("score = %d, want 100", score)
	}
	if !strings.Contains(m.View(), "Score: 100%") {
		t.Fatalf("expected score in view:\n%s", m.View())
	}

	m = press(t, m, runes("x"))
	if m.actionOutput == nil || m.actionOutput.IsError {
		t.Fatalf("expected export success, got %+v", m.actionOutput)
	}
	data, err := os.ReadFile(filepath.Join(m.exportDir, "enzymes.txt_quiz.txt"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "Quiz - enzymes.txt") {
		t.Fatalf("unexpected export:\n%s", data)
	}

	m = press(t, m, runes("t"))
	s = m.engine.Quiz()
	if s.State() != quiz.StateActive || s.AnsweredCount() != 0 {
		t.Fatalf("expected fresh attempt, got state %v with %d answers", s.State(), s.AnsweredCount())
	}
}

func TestSummaryExport(t *testing.T) {
	m := loadedModel(t, &fakeService{})
	m = press(t, m, runes("x"))
	if m.actionOutput == nil || m.actionOutput.IsError {
		t.Fatalf("expected export success, got %+v", m.actionOutput)
	}
	if _, err := os.Stat(filepath.Join(m.exportDir, "enzymes.txt_summary.txt")); err != nil {
		t.Fatalf("expected summary export: %v", err)
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	m := loadedModel(t, &fakeService{})
	before := m.engine.Summary()

	stale := session.SummaryResult{Ref: session.Ref{DocumentID: "replaced", Epoch: 0}, Err: errors.New("late failure")}
	updated, _ := m.Update(summaryDoneMsg{result: stale})
	m = updated.(Model)

	if m.engine.Summary().Status != before.Status {
		t.Fatalf("stale result changed summary status")
	}
	if m.actionOutput != nil && m.actionOutput.IsError {
		t.Fatalf("stale result surfaced error %q", m.actionOutput.Message)
	}
}

func TestOptionKey(t *testing.T) {
	s, err := quiz.Session{}.BeginGenerate(1)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	s, err = s.Generated([]quiz.Question{{ID: "1", Prompt: "?", Options: []string{"x", "y", "z"}, CorrectIndex: 0}})
	if err != nil {
		t.Fatalf("generated: %v", err)
	}

	cases := []struct {
		key  string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{"c", 2, true},
		{"d", 0, false},
		{"1", 0, true},
		{"3", 2, true},
		{"4", 0, false},
		{"0", 0, false},
		{"enter", 0, false},
	}
	for _, tc := range cases {
		got, ok := optionKey(tc.key, s)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("optionKey(%q) = %d, %v; want %d, %v", tc.key, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQuitCancelsContext(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	updated, cmd := m.Update(runes("q"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.ctx.Err() == nil {
		t.Fatalf("expected model context cancelled")
	}
}

func TestScrollDirectionPerTab(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.scrollOffset != 0 {
		t.Fatalf("summary offset = %d, want 0 at top", m.scrollOffset)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.scrollOffset != 1 {
		t.Fatalf("summary offset = %d, want 1", m.scrollOffset)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.scrollOffset != 0 {
		t.Fatalf("expected offset reset on tab switch")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.scrollOffset != 1 {
		t.Fatalf("chat offset = %d, want 1 line back from newest", m.scrollOffset)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.scrollOffset != 0 {
		t.Fatalf("chat offset = %d, want 0", m.scrollOffset)
	}
}

func TestLateStreamCloseKeepsNextTurnListening(t *testing.T) {
	svc := &fakeService{streamWire: "data: {\"type\":\"chunk\",\"content\":\"They speed reactions.\"}\n\n" +
		"data: {\"type\":\"done\"}\n\n"}
	m := loadedModel(t, svc)
	m.tab = TabChat

	m, _ = m.sendChat("What do enzymes do?")
	firstChan := m.chatChan
	listen := listenChatCmd(firstChan)
	for m.engine.ChatBusy() {
		msg := listen()
		ev, ok := msg.(chatEventMsg)
		if !ok {
			t.Fatalf("expected chat event, got %T", msg)
		}
		m = m.applyChatEvent(ev.event)
		listen = listenChatCmd(ev.ch)
	}

	// The first turn is closed but its channel has not reported closing yet.
	m, cmd := m.sendChat("Are they consumed?")
	if m.chatChan == nil || m.chatChan == firstChan {
		t.Fatalf("expected a fresh channel for the second turn")
	}
	updated, _ := m.Update(chatStreamDoneMsg{ch: firstChan})
	m = updated.(Model)
	if m.chatChan == nil {
		t.Fatalf("late close of the first turn dropped the second turn's channel")
	}

	m = drain(t, m, tea.Batch(cmd, listen))
	if m.engine.ChatBusy() {
		t.Fatalf("expected second turn closed")
	}
	msgs := m.engine.Messages()
	if len(msgs) != 5 {
		t.Fatalf("expected greeting and two exchanges, got %d messages", len(msgs))
	}
	if msgs[4].Content != "They speed reactions." {
		t.Fatalf("second reply = %q", msgs[4].Content)
	}
	if m.chatChan != nil {
		t.Fatalf("expected channel cleared once the second turn closed")
	}
}

func TestDocumentSwapDrainsOldChat(t *testing.T) {
	wire := strings.Repeat("data: {\"type\":\"chunk\",\"content\":\"x\"}\n\n", 100) + "data: {\"type\":\"done\"}\n\n"
	m := loadedModel(t, &fakeService{streamWire: wire})
	m.tab = TabChat

	m, listen := m.sendChat("What do enzymes do?")
	old := m.chatChan
	if old == nil {
		t.Fatalf("expected chat channel")
	}

	next := session.Document{ID: "doc-2", Name: "cells.txt", ByteSize: 5, RawText: "cells"}
	updated, cmd := m.Update(documentLoadedMsg{path: "cells.txt", doc: next})
	m = drain(t, updated.(Model), tea.Batch(listen, cmd))

	select {
	case _, open := <-old:
		if open {
			t.Fatalf("old chat channel still carries events")
		}
	default:
		t.Fatalf("old chat channel was not drained to close")
	}
	doc, _ := m.engine.Document()
	if doc.ID != "doc-2" {
		t.Fatalf("document = %q, want doc-2", doc.ID)
	}
	if m.engine.ChatBusy() {
		t.Fatalf("expected no open turn on the new document")
	}
	if got := len(m.engine.Messages()); got != 1 {
		t.Fatalf("expected only the new greeting, got %d messages", got)
	}
}
