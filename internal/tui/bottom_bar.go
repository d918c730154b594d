package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/summary"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

func RenderBottomBar(model Model) string {
	actions := actionHints(model)
	left := strings.Join(actions, " ")

	if model.busy() {
		frame := spinnerFrames[model.spinnerIndex%len(spinnerFrames)]
		left = fmt.Sprintf("%s | %s %s", left, frame, busyLabel(model))
	}

	right := "no document"
	if doc, ok := model.engine.Document(); ok {
		right = doc.Name
	}
	contentWidth := model.windowWidth
	padding := 1
	if contentWidth > 0 {
		contentWidth = contentWidth - padding*2
		if contentWidth < 0 {
			contentWidth = 0
		}
	}
	bar := layoutBar(left, right, contentWidth)

	style := lipgloss.NewStyle().Reverse(true).Padding(0, padding)
	return style.Render(bar)
}

func busyLabel(model Model) string {
	switch {
	case model.actionInProgress:
		return model.actionName
	case model.engine.ChatBusy():
		return "answering"
	case model.engine.Summary().Status == summary.StatusGenerating:
		return "summarizing"
	default:
		return "generating quiz"
	}
}

func actionHints(model Model) []string {
	switch model.inputMode {
	case InputOpen:
		return []string{"[enter]open", "[esc]cancel"}
	case InputChat:
		return []string{"[enter]send", "[esc]done"}
	}

	actions := []string{"[o]pen", "[tab]switch"}
	if !model.engine.IsExperienceEnabled(model.tab.experience()) {
		return append(actions, "[q]uit")
	}

	switch model.tab {
	case TabSummary:
		switch model.engine.Summary().Status {
		case summary.StatusReady:
			actions = append(actions, "[r]egenerate", "e[x]port")
		case summary.StatusAbsent, summary.StatusFailed:
			actions = append(actions, "[g]enerate")
		}
	case TabChat:
		if model.engine.ChatBusy() {
			actions = append(actions, "[c]ancel")
		} else {
			actions = append(actions, "[i]nput")
		}
	case TabQuiz:
		actions = append(actions, quizHints(model.engine.Quiz())...)
	}
	return append(actions, "[q]uit")
}

func quizHints(s quiz.Session) []string {
	switch s.State() {
	case quiz.StateIdle:
		return []string{"[g]enerate"}
	case quiz.StateActive:
		hints := []string{"[a-" + quiz.OptionLetter(optionCount(s)-1) + "]answer"}
		if s.CanPrevious() {
			hints = append(hints, "[p]rev")
		}
		if s.CanNext() {
			hints = append(hints, "[n]ext")
		}
		if s.CanSubmit() {
			hints = append(hints, "[s]ubmit")
		}
		return append(hints, "[t]restart", "[r]egenerate", "e[x]port")
	case quiz.StateResults:
		return []string{"[t]retake", "[r]egenerate", "e[x]port"}
	}
	return nil
}

func optionCount(s quiz.Session) int {
	q, ok := s.Current()
	if !ok || len(q.Options) == 0 {
		return 1
	}
	return len(q.Options)
}

func layoutBar(left string, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	gap := width - leftWidth - rightWidth
	if gap < 1 {
		availableLeft := width - rightWidth - 1
		if availableLeft < 0 {
			return truncate(right, width)
		}
		left = truncate(left, availableLeft)
		leftWidth = lipgloss.Width(left)
		gap = width - leftWidth - rightWidth
		if gap < 1 {
			gap = 1
		}
	}
	bar := left + strings.Repeat(" ", gap) + right
	return truncate(bar, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
