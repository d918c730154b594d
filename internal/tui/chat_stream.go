package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbonatakis/studydesk/internal/session"
)

const chatBuffer = 32

// Both messages carry the channel they were read from so a listener keeps
// draining its own job after the model has moved on to another one.
type chatEventMsg struct {
	ch    <-chan session.ChatEvent
	event session.ChatEvent
}

type chatStreamDoneMsg struct {
	ch <-chan session.ChatEvent
}

// runChatJob runs job on its own goroutine and forwards every event to the
// returned channel, which is closed after the terminal event.
func runChatJob(job session.ChatJob) <-chan session.ChatEvent {
	ch := make(chan session.ChatEvent, chatBuffer)
	go func() {
		defer close(ch)
		job.Run(func(ev session.ChatEvent) {
			ch <- ev
		})
	}()
	return ch
}

func listenChatCmd(ch <-chan session.ChatEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return chatStreamDoneMsg{ch: ch}
		}
		return chatEventMsg{ch: ch, event: ev}
	}
}
