package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/session"
	"github.com/jbonatakis/studydesk/internal/summary"
	"go.uber.org/zap"
)

type Tab int

const (
	TabSummary Tab = iota
	TabChat
	TabQuiz
)

var tabOrder = []Tab{TabSummary, TabChat, TabQuiz}

func (t Tab) String() string {
	switch t {
	case TabSummary:
		return "Summary"
	case TabChat:
		return "Chat"
	case TabQuiz:
		return "Quiz"
	default:
		return "?"
	}
}

func (t Tab) experience() session.Experience {
	switch t {
	case TabChat:
		return session.ExperienceChat
	case TabQuiz:
		return session.ExperienceQuiz
	default:
		return session.ExperienceSummary
	}
}

type InputMode int

const (
	InputNone InputMode = iota
	InputOpen
	InputChat
)

type spinnerTickMsg struct{}

type Model struct {
	engine           *session.Engine
	uploader         session.Uploader
	log              *zap.Logger
	numQuestions     int
	exportDir        string
	initialPath      string
	ctx              context.Context
	cancel           context.CancelFunc
	tab              Tab
	inputMode        InputMode
	pathInput        textinput.Model
	chatInput        textinput.Model
	windowWidth      int
	windowHeight     int
	actionInProgress bool
	actionName       string
	spinning         bool
	spinnerIndex     int
	chatChan         <-chan session.ChatEvent
	scrollOffset     int
	actionOutput     *ActionOutput
}

func NewModel(cfg Config) Model {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	n := cfg.NumQuestions
	if n <= 0 {
		n = 5
	}
	dir := cfg.ExportDir
	if dir == "" {
		dir = "."
	}

	path := textinput.New()
	path.Placeholder = "path/to/notes.pdf"
	path.CharLimit = 1024
	path.Width = 60

	msg := textinput.New()
	msg.Placeholder = "Ask a question about the document..."
	msg.CharLimit = 2000
	msg.Width = 60

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		engine:       cfg.Engine,
		uploader:     cfg.Uploader,
		log:          log,
		numQuestions: n,
		exportDir:    dir,
		initialPath:  cfg.InitialPath,
		ctx:          ctx,
		cancel:       cancel,
		tab:          TabSummary,
		pathInput:    path,
		chatInput:    msg,
	}
}

func (m Model) Init() tea.Cmd {
	if m.initialPath == "" {
		return nil
	}
	path := m.initialPath
	return func() tea.Msg {
		return openRequestMsg{path: path}
	}
}

type openRequestMsg struct {
	path string
}

func (m Model) shutdown() {
	m.engine.Close()
	if m.cancel != nil {
		m.cancel()
	}
}

// busy reports whether any request is outstanding.
func (m Model) busy() bool {
	if m.actionInProgress {
		return true
	}
	if m.engine.ChatBusy() {
		return true
	}
	if m.engine.Summary().Status == summary.StatusGenerating {
		return true
	}
	return m.engine.Quiz().State() == quiz.StateGenerating
}

func (m Model) ensureSpinner() (Model, tea.Cmd) {
	if m.spinning {
		return m, nil
	}
	m.spinning = true
	return m, spinnerTickCmd()
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = typed.Width
		m.windowHeight = typed.Height
		inputWidth := typed.Width - 10
		if inputWidth < 10 {
			inputWidth = 10
		}
		m.pathInput.Width = inputWidth
		m.chatInput.Width = inputWidth
		return m, nil
	case spinnerTickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, spinnerTickCmd()
	case openRequestMsg:
		return m.openDocument(typed.path)
	case documentLoadedMsg:
		return m.applyDocument(typed)
	case summaryDoneMsg:
		return m.applySummary(typed.result), nil
	case quizDoneMsg:
		return m.applyQuiz(typed.result), nil
	case chatEventMsg:
		m = m.applyChatEvent(typed.event)
		return m, listenChatCmd(typed.ch)
	case chatStreamDoneMsg:
		if typed.ch == m.chatChan {
			m.chatChan = nil
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m.updateInput(msg)
}

// updateInput passes other messages, such as cursor blinks, to the focused
// input.
func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.inputMode {
	case InputOpen:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case InputChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	switch m.inputMode {
	case InputOpen:
		return m.handleOpenKey(msg)
	case InputChat:
		return m.handleChatKey(msg)
	}

	switch key {
	case "q":
		m.shutdown()
		return m, tea.Quit
	case "tab", "shift+tab":
		m.tab = nextTab(m.tab, key == "shift+tab")
		m.scrollOffset = 0
		return m, nil
	case "o":
		if m.actionInProgress {
			return m, nil
		}
		m.inputMode = InputOpen
		m.pathInput.Reset()
		m.pathInput.Focus()
		return m, nil
	case "esc":
		m.actionOutput = nil
		return m, nil
	case "up", "k":
		m.scroll(-1)
		return m, nil
	case "down", "j":
		m.scroll(1)
		return m, nil
	}

	if !m.engine.IsExperienceEnabled(m.tab.experience()) {
		return m, nil
	}
	switch m.tab {
	case TabSummary:
		return m.handleSummaryKey(key)
	case TabChat:
		return m.handleChatTabKey(key)
	case TabQuiz:
		return m.handleQuizKey(key)
	}
	return m, nil
}

// scroll moves the visible window by delta lines. The chat pane counts its
// offset from the newest message.
func (m *Model) scroll(delta int) {
	if m.tab == TabChat {
		delta = -delta
	}
	m.scrollOffset += delta
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func nextTab(current Tab, reverse bool) Tab {
	for i, t := range tabOrder {
		if t != current {
			continue
		}
		if reverse {
			return tabOrder[(i+len(tabOrder)-1)%len(tabOrder)]
		}
		return tabOrder[(i+1)%len(tabOrder)]
	}
	return TabSummary
}

func (m Model) handleOpenKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.pathInput.Blur()
		return m, nil
	case "enter":
		path := m.pathInput.Value()
		m.inputMode = InputNone
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		return m.openDocument(path)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.chatInput.Blur()
		return m, nil
	case "enter":
		if m.engine.ChatBusy() {
			return m, nil
		}
		return m.sendChat(m.chatInput.Value())
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) handleSummaryKey(key string) (Model, tea.Cmd) {
	switch key {
	case "g":
		switch m.engine.Summary().Status {
		case summary.StatusReady, summary.StatusGenerating:
			return m, nil
		}
		return m.startSummary(false)
	case "r":
		if m.engine.Summary().Status == summary.StatusGenerating {
			return m, nil
		}
		return m.startSummary(true)
	case "x":
		return m.exportSummary(), nil
	}
	return m, nil
}

func (m Model) handleChatTabKey(key string) (Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		m.inputMode = InputChat
		m.chatInput.Focus()
		return m, nil
	case "c":
		if m.engine.ChatBusy() {
			// Cancelling the turn delivers a terminal event through the
			// open channel.
			m.engine.Close()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleQuizKey(key string) (Model, tea.Cmd) {
	s := m.engine.Quiz()
	if s.State() == quiz.StateGenerating {
		return m, nil
	}
	switch key {
	case "g":
		if s.State() == quiz.StateActive {
			return m, nil
		}
		return m.startQuiz(false)
	case "r":
		return m.startQuiz(true)
	case "x":
		return m.exportQuiz(), nil
	case "n", "right":
		return m.quizStep(m.engine.NextQuestion), nil
	case "p", "left":
		return m.quizStep(m.engine.PreviousQuestion), nil
	case "s":
		return m.quizStep(m.engine.SubmitQuiz), nil
	case "t":
		m.scrollOffset = 0
		return m.quizStep(m.engine.RetakeQuiz), nil
	}

	if option, ok := optionKey(key, s); ok {
		return m.quizStep(func() error { return m.engine.SelectAnswer(option) }), nil
	}
	return m, nil
}

func (m Model) quizStep(step func() error) Model {
	if err := step(); err != nil {
		return m.fail("Quiz", err)
	}
	m.actionOutput = nil
	return m
}

// optionKey maps a letter or 1-based digit to an option of the current
// question.
func optionKey(key string, s quiz.Session) (int, bool) {
	q, ok := s.Current()
	if !ok || s.State() != quiz.StateActive || len(key) != 1 {
		return 0, false
	}
	n := len(q.Options)
	if v, err := strconv.Atoi(key); err == nil {
		if v >= 1 && v <= n {
			return v - 1, true
		}
		return 0, false
	}
	c := key[0]
	if c >= 'a' && int(c-'a') < n {
		return int(c - 'a'), true
	}
	return 0, false
}
