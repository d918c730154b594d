package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jbonatakis/studydesk/internal/chat"
	"github.com/jbonatakis/studydesk/internal/export"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/session"
	"go.uber.org/zap"
)

// ActionOutput represents the result of an action to display to the user
type ActionOutput struct {
	Message string
	IsError bool
}

// RenderActionOutput renders action output or error messages
func RenderActionOutput(output *ActionOutput, width int) string {
	if output == nil {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	if output.IsError {
		style = style.BorderForeground(lipgloss.Color("196"))
	} else {
		style = style.BorderForeground(lipgloss.Color("46"))
	}

	if width > 0 {
		style = style.Width(width - 4)
	}

	return style.Render(output.Message)
}

type documentLoadedMsg struct {
	path string
	doc  session.Document
	err  error
}

type summaryDoneMsg struct {
	result session.SummaryResult
}

type quizDoneMsg struct {
	result session.QuizResult
}

func loadDocumentCmd(ctx context.Context, up session.Uploader, path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := session.LoadDocument(ctx, up, path)
		return documentLoadedMsg{path: path, doc: doc, err: err}
	}
}

func summaryCmd(ctx context.Context, job session.SummaryJob) tea.Cmd {
	return func() tea.Msg {
		return summaryDoneMsg{result: job.Run(ctx)}
	}
}

func quizCmd(ctx context.Context, job session.QuizJob) tea.Cmd {
	return func() tea.Msg {
		return quizDoneMsg{result: job.Run(ctx)}
	}
}

func (m Model) openDocument(path string) (Model, tea.Cmd) {
	m.actionInProgress = true
	m.actionName = "loading " + path
	m.actionOutput = nil
	m, spin := m.ensureSpinner()
	return m, tea.Batch(loadDocumentCmd(m.ctx, m.uploader, path), spin)
}

func (m Model) applyDocument(msg documentLoadedMsg) (Model, tea.Cmd) {
	m.actionInProgress = false
	m.actionName = ""
	if msg.err != nil {
		m.log.Warn("document load failed", zap.String("path", msg.path), zap.Error(msg.err))
		m.actionOutput = &ActionOutput{
			Message: fmt.Sprintf("Could not load %s: %s", msg.path, genclient.Detail(msg.err)),
			IsError: true,
		}
		return m, nil
	}

	m.engine.SetDocument(msg.doc)
	m.chatChan = nil
	m.scrollOffset = 0
	m.tab = TabSummary
	m.actionOutput = &ActionOutput{
		Message: fmt.Sprintf("Loaded %s (%d bytes)", msg.doc.Name, msg.doc.ByteSize),
	}
	return m.startSummary(false)
}

func (m Model) startSummary(regenerate bool) (Model, tea.Cmd) {
	var (
		job session.SummaryJob
		err error
	)
	if regenerate {
		job, err = m.engine.RegenerateSummary()
	} else {
		job, err = m.engine.StartSummary()
	}
	if err != nil {
		return m.fail("Summary", err), nil
	}
	if job.Cached {
		return m.applySummary(job.Run(m.ctx)), nil
	}
	m, spin := m.ensureSpinner()
	return m, tea.Batch(summaryCmd(m.ctx, job), spin)
}

func (m Model) applySummary(res session.SummaryResult) Model {
	if err := m.engine.ApplySummary(res); err != nil && !errors.Is(err, session.ErrStaleResult) {
		return m.fail("Summary", err)
	}
	return m
}

func (m Model) startQuiz(regenerate bool) (Model, tea.Cmd) {
	var (
		job session.QuizJob
		err error
	)
	if regenerate {
		job, err = m.engine.RegenerateQuiz(m.numQuestions)
	} else {
		job, err = m.engine.StartQuiz(m.numQuestions)
	}
	if err != nil {
		return m.fail("Quiz", err), nil
	}
	m.scrollOffset = 0
	m, spin := m.ensureSpinner()
	return m, tea.Batch(quizCmd(m.ctx, job), spin)
}

func (m Model) applyQuiz(res session.QuizResult) Model {
	err := m.engine.ApplyQuiz(res)
	if errors.Is(err, session.ErrStaleResult) {
		return m
	}
	if err != nil {
		return m.fail("Quiz", err)
	}
	return m
}

func (m Model) sendChat(text string) (Model, tea.Cmd) {
	job, err := m.engine.SendChat(m.ctx, text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return m, nil
		}
		return m.fail("Chat", err), nil
	}
	m.chatInput.Reset()
	m.actionOutput = nil
	m.scrollOffset = 0
	m.chatChan = runChatJob(job)
	m, spin := m.ensureSpinner()
	return m, tea.Batch(listenChatCmd(m.chatChan), spin)
}

func (m Model) applyChatEvent(ev session.ChatEvent) Model {
	if err := m.engine.ApplyChat(ev); err != nil {
		return m
	}
	if ev.Err != nil && !errors.Is(ev.Err, context.Canceled) {
		m.actionOutput = &ActionOutput{
			Message: "Chat failed: " + genclient.Detail(ev.Err),
			IsError: true,
		}
	}
	return m
}

// exportSummary writes the ready summary to the export directory.
func (m Model) exportSummary() Model {
	name, content, err := m.engine.ExportSummary()
	if err != nil {
		return m.fail("Export", err)
	}
	return m.writeExport(name, content)
}

func (m Model) exportQuiz() Model {
	name, content, err := m.engine.ExportQuiz()
	if err != nil {
		return m.fail("Export", err)
	}
	return m.writeExport(name, content)
}

func (m Model) writeExport(name string, content string) Model {
	path, err := export.Write(m.exportDir, name, content)
	if err != nil {
		return m.fail("Export", err)
	}
	m.log.Info("exported", zap.String("path", path))
	m.actionOutput = &ActionOutput{Message: "Saved " + path}
	return m
}

func (m Model) fail(what string, err error) Model {
	m.actionOutput = &ActionOutput{
		Message: fmt.Sprintf("%s: %s", what, genclient.Detail(err)),
		IsError: true,
	}
	return m
}
