package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/jbonatakis/studydesk/internal/chat"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/summary"
)

var (
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	wrongStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m Model) View() string {
	if m.windowHeight <= 0 {
		return m.renderTabs() + "\n" + m.renderContent(0) + "\n" + RenderBottomBar(m)
	}

	header := m.renderTabs()
	var extras []string
	if m.actionOutput != nil {
		extras = append(extras, RenderActionOutput(m.actionOutput, m.windowWidth))
	}
	if input := m.renderInput(); input != "" {
		extras = append(extras, input)
	}

	// Keep total output one line short of the window so the first line is
	// never scrolled away: header, pane borders, bar and one spare line.
	used := 5
	for _, e := range extras {
		used += lipgloss.Height(e)
	}
	availableHeight := m.windowHeight - used
	if availableHeight < 1 {
		return RenderBottomBar(m)
	}

	width := m.windowWidth - 2
	if width < 0 {
		width = 0
	}
	content := m.renderContent(width - 2)
	offset := m.scrollOffset
	if m.tab == TabChat {
		offset = lipgloss.Height(content) - availableHeight - m.scrollOffset
	}
	body := applyViewport(content, width-2, availableHeight, offset)
	pane := renderPane(body, width, availableHeight, m.tab.String())

	parts := append([]string{header, pane}, extras...)
	return strings.Join(parts, "\n") + "\n" + RenderBottomBar(m)
}

func (m Model) renderTabs() string {
	labels := make([]string, 0, len(tabOrder))
	for _, t := range tabOrder {
		label := " " + t.String() + " "
		switch {
		case t == m.tab:
			label = headingStyle.Reverse(true).Render(label)
		case !m.engine.IsExperienceEnabled(t.experience()):
			label = mutedStyle.Render(label)
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, " ")
}

func (m Model) renderInput() string {
	switch m.inputMode {
	case InputOpen:
		return "Open: " + m.pathInput.View()
	case InputChat:
		return "You: " + m.chatInput.View()
	}
	return ""
}

func (m Model) renderContent(width int) string {
	if !m.engine.IsExperienceEnabled(m.tab.experience()) {
		return mutedStyle.Render("Press o to open a PDF or text document.")
	}
	switch m.tab {
	case TabChat:
		return renderChat(m.engine.Messages(), m.engine.ChatBusy(), width)
	case TabQuiz:
		return renderQuiz(m.engine.Quiz(), m.spinnerFrame())
	default:
		return m.renderSummary(width)
	}
}

func (m Model) spinnerFrame() string {
	return spinnerFrames[m.spinnerIndex%len(spinnerFrames)]
}

func (m Model) renderSummary(width int) string {
	view := m.engine.Summary()
	switch view.Status {
	case summary.StatusGenerating:
		return m.spinnerFrame() + " Generating summary..."
	case summary.StatusFailed:
		return wrongStyle.Render("Summary failed: "+view.Failure) + "\n\n" + mutedStyle.Render("Press g to try again.")
	case summary.StatusAbsent:
		return mutedStyle.Render("Press g to generate a summary.")
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Quick Notes"))
	b.WriteString("\n")
	for _, note := range view.Artifact.QuickNotes {
		b.WriteString(wrapBullet(note, width))
	}
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Key Takeaways"))
	b.WriteString("\n")
	for _, item := range view.Artifact.KeyTakeaways {
		b.WriteString(wrapBullet(item, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func wrapBullet(text string, width int) string {
	if width <= 4 {
		return "• " + text + "\n"
	}
	wrapped := lipgloss.NewStyle().Width(width - 2).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = "• " + strings.TrimRight(line, " ")
		} else {
			lines[i] = "  " + strings.TrimRight(line, " ")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderChat(messages []chat.Message, busy bool, width int) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == chat.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		content := msg.Content
		if content == "" && busy && i == len(messages)-1 {
			content = mutedStyle.Render("...")
		}
		if width > 0 {
			content = lipgloss.NewStyle().Width(width).Render(content)
		}
		b.WriteString(content)
	}
	return b.String()
}

func renderQuiz(s quiz.Session, frame string) string {
	switch s.State() {
	case quiz.StateGenerating:
		return fmt.Sprintf("%s Generating %d questions...", frame, s.Requested())
	case quiz.StateActive:
		return renderQuestion(s)
	case quiz.StateResults:
		return renderResults(s)
	}
	if msg := s.LastError(); msg != "" {
		return wrongStyle.Render("Quiz failed: "+msg) + "\n\n" + mutedStyle.Render("Press g to try again.")
	}
	return mutedStyle.Render("Press g to generate a quiz.")
}

func renderQuestion(s quiz.Session) string {
	q, ok := s.Current()
	if !ok {
		return ""
	}
	chosen, answered := s.Answer(s.CurrentIndex())

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n",
		headingStyle.Render(fmt.Sprintf("Question %d of %d", s.CurrentIndex()+1, s.Len())),
		mutedStyle.Render(fmt.Sprintf("%d answered, %.0f%% through", s.AnsweredCount(), s.Progress()*100)),
	)
	b.WriteString(q.Prompt)
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		line := fmt.Sprintf("%s) %s", quiz.OptionLetter(i), opt)
		if answered && chosen == i {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderResults(s quiz.Session) string {
	score, err := s.Score()
	if err != nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headingStyle.Render(fmt.Sprintf("Score: %d%% (%d of %d correct)", score, s.CorrectCount(), s.Len())))

	review, err := s.Review()
	if err != nil {
		return b.String()
	}
	for _, item := range review {
		mark := correctStyle.Render("correct")
		if !item.Correct {
			mark = wrongStyle.Render(fmt.Sprintf("incorrect, answer %s) %s",
				quiz.OptionLetter(item.Question.CorrectIndex),
				item.Question.Options[item.Question.CorrectIndex]))
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n", item.Index+1, item.Question.Prompt, mark)
		if item.Question.Explanation != "" {
			fmt.Fprintf(&b, "   %s\n", mutedStyle.Render(item.Question.Explanation))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// applyViewport renders content in a viewport of the given size scrolled to
// offset, clamped so the last line stays on screen.
func applyViewport(content string, width int, height int, offset int) string {
	if height <= 0 || width <= 0 {
		return content
	}
	view := viewport.New(width, height)
	view.SetContent(content)
	if offset < 0 {
		offset = 0
	}
	maxOffset := len(strings.Split(content, "\n")) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	view.YOffset = offset
	return view.View()
}

func renderPane(content string, width int, height int, title string) string {
	borderColor := lipgloss.Color("69")

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Height(height).
		Padding(0, 1)

	rendered := style.Render(content)
	if title == "" {
		return rendered
	}

	// Rebuild the top border with the title; the rendered line carries ANSI
	// codes, so it is replaced rather than edited.
	lines := strings.Split(rendered, "\n")
	if len(lines) < 2 {
		return rendered
	}
	targetWidth := lipgloss.Width(lines[1])
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)
	nMiddle := targetWidth - 7 - lipgloss.Width(title)
	if nMiddle < 0 {
		nMiddle = 0
	}
	topLine := borderStyle.Render("╭ ") +
		titleStyle.Render(" "+title+" ") +
		borderStyle.Render(strings.Repeat("─", nMiddle)+"╮")
	if w := lipgloss.Width(topLine); w < targetWidth {
		nMiddle += targetWidth - w
		topLine = borderStyle.Render("╭ ") +
			titleStyle.Render(" "+title+" ") +
			borderStyle.Render(strings.Repeat("─", nMiddle)+"╮")
	}
	lines[0] = topLine
	return strings.Join(lines, "\n")
}
