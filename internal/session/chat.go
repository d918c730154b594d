package session

import (
	"context"
	"errors"

	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/stream"
	"go.uber.org/zap"
)

// ChatEvent is one step of an assistant turn, in the order it was received.
type ChatEvent struct {
	Ref    Ref
	TurnID string
	Delta  string
	// Final carries the whole reply from the non-streaming endpoint.
	Final *string
	Done  bool
	Err   error
}

func (ev ChatEvent) Terminal() bool {
	return ev.Final != nil || ev.Done || ev.Err != nil
}

type ChatJob struct {
	Ref       Ref
	TurnID    string
	content   string
	docText   string
	streaming bool
	gen       Generator
	ctx       context.Context
	log       *zap.Logger
}

// SendChat appends the user's message, opens an assistant turn and returns
// the job that fetches the reply. Only one turn may be in flight.
func (e *Engine) SendChat(ctx context.Context, text string) (ChatJob, error) {
	if err := e.requireDocument(ExperienceChat); err != nil {
		return ChatJob{}, err
	}
	if e.transcript.Streaming() {
		return ChatJob{}, ErrChatBusy
	}
	if _, err := e.transcript.AppendUser(text); err != nil {
		return ChatJob{}, err
	}
	turnID, err := e.transcript.BeginAssistantTurn()
	if err != nil {
		return ChatJob{}, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	e.chatCancel = cancel

	return ChatJob{
		Ref:       e.ref(),
		TurnID:    turnID,
		content:   text,
		docText:   e.doc.RawText,
		streaming: e.streaming,
		gen:       e.gen,
		ctx:       jobCtx,
		log:       e.log,
	}, nil
}

// Run fetches the reply and reports each step to emit, ending with exactly
// one terminal event. It blocks until the turn finishes or is cancelled.
func (j ChatJob) Run(emit func(ChatEvent)) {
	base := ChatEvent{Ref: j.Ref, TurnID: j.TurnID}
	send := func(mut func(*ChatEvent)) {
		ev := base
		mut(&ev)
		emit(ev)
	}

	if j.streaming {
		reader, err := j.gen.StreamChat(j.ctx, j.content, j.docText)
		if err == nil {
			_, err = stream.Consume(j.ctx, reader, func(delta string) {
				send(func(ev *ChatEvent) { ev.Delta = delta })
			})
			if err != nil {
				send(func(ev *ChatEvent) { ev.Err = err })
				return
			}
			send(func(ev *ChatEvent) { ev.Done = true })
			return
		}
		if !genclient.IsStreamUnsupported(err) {
			send(func(ev *ChatEvent) { ev.Err = err })
			return
		}
		j.log.Info("streaming chat unavailable, using plain endpoint")
	}

	reply, err := j.gen.SendChat(j.ctx, j.content, j.docText)
	if err != nil {
		send(func(ev *ChatEvent) { ev.Err = err })
		return
	}
	send(func(ev *ChatEvent) { ev.Final = &reply })
}

// ApplyChat feeds one event into the transcript. Events for a replaced
// document or a closed turn return ErrStaleResult.
func (e *Engine) ApplyChat(ev ChatEvent) error {
	if !e.current(ev.Ref) || e.transcript.TargetID() != ev.TurnID {
		return ErrStaleResult
	}
	switch {
	case ev.Err != nil:
		if !errors.Is(ev.Err, context.Canceled) {
			e.log.Warn("chat turn failed", zap.Error(ev.Err))
		}
		e.transcript.FailTarget()
	case ev.Final != nil:
		e.transcript.CloseTarget(ev.Final)
	case ev.Done:
		e.transcript.CloseTarget(nil)
	default:
		e.transcript.AppendToTarget(ev.Delta)
		return nil
	}
	e.cancelChat()
	return nil
}
