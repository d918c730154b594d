// Package session owns the active document and the study experiences derived
// from it. Engine is not safe for concurrent use: every method must be called
// from the goroutine that drives the UI. Network work happens in jobs whose
// results are handed back to that goroutine through the Apply methods.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jbonatakis/studydesk/internal/chat"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/stream"
	"github.com/jbonatakis/studydesk/internal/summary"
	"go.uber.org/zap"
)

type Experience string

const (
	ExperienceSummary Experience = "summary"
	ExperienceChat    Experience = "chat"
	ExperienceQuiz    Experience = "quiz"
)

var (
	ErrNoDocument  = errors.New("no document loaded")
	ErrChatBusy    = errors.New("wait for the current reply to finish")
	ErrStaleResult = errors.New("result belongs to a replaced document")
)

// Generator is the part of the generation service the engine depends on.
type Generator interface {
	GenerateSummary(ctx context.Context, text string) (genclient.Summary, error)
	SendChat(ctx context.Context, content string, contextText string) (string, error)
	StreamChat(ctx context.Context, content string, contextText string) (*stream.Reader, error)
	GenerateQuiz(ctx context.Context, text string, numQuestions int) (genclient.Quiz, error)
}

var _ Generator = (*genclient.Client)(nil)

type Options struct {
	Logger *zap.Logger
	// Streaming selects the streamed chat endpoint; the plain endpoint is
	// used when false or when the service does not offer streaming.
	Streaming bool
	// Store shares summaries between documents with identical text.
	Store *summary.Store
	// Greet seeds each transcript with the assistant's welcome message.
	Greet bool
}

// Ref ties a job result to the document and epoch that started it.
type Ref struct {
	DocumentID string
	Epoch      uint64
}

type Engine struct {
	gen        Generator
	log        *zap.Logger
	streaming  bool
	greet      bool
	doc        *Document
	epoch      uint64
	transcript *chat.Transcript
	quiz       quiz.Session
	summary    *summary.Cache
	chatCancel context.CancelFunc
}

func New(gen Generator, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		gen:        gen,
		log:        log,
		streaming:  opts.Streaming,
		greet:      opts.Greet,
		transcript: chat.NewTranscript(),
		summary:    summary.NewCache(opts.Store),
	}
}

// SetDocument makes doc the active document. Transcript, quiz and summary are
// reset, an open chat stream is cancelled, and results of jobs started for
// the previous document will be discarded.
func (e *Engine) SetDocument(doc Document) {
	e.cancelChat()
	e.epoch++
	d := doc
	e.doc = &d
	e.transcript = chat.NewTranscript()
	if e.greet {
		e.transcript.Seed(chat.Greeting(doc.Name))
	}
	e.quiz = quiz.Session{}
	e.summary.Reset()
	e.log.Info("document set",
		zap.String("document", doc.ID),
		zap.String("name", doc.Name),
		zap.Int64("bytes", doc.ByteSize),
		zap.Uint64("epoch", e.epoch),
	)
}

func (e *Engine) Document() (Document, bool) {
	if e.doc == nil {
		return Document{}, false
	}
	return *e.doc, true
}

// IsExperienceEnabled reports whether name can be used, which is the case
// once a document is loaded.
func (e *Engine) IsExperienceEnabled(name Experience) bool {
	switch name {
	case ExperienceSummary, ExperienceChat, ExperienceQuiz:
		return e.doc != nil
	default:
		return false
	}
}

func (e *Engine) Messages() []chat.Message { return e.transcript.Messages() }

func (e *Engine) ChatBusy() bool { return e.transcript.Streaming() }

func (e *Engine) Quiz() quiz.Session { return e.quiz }

type SummaryView struct {
	Status   summary.Status
	Artifact summary.Artifact
	Failure  string
}

func (e *Engine) Summary() SummaryView {
	a, _ := e.summary.Artifact()
	return SummaryView{
		Status:   e.summary.Status(),
		Artifact: a,
		Failure:  e.summary.Failure(),
	}
}

// Close cancels any in-flight chat stream.
func (e *Engine) Close() {
	e.cancelChat()
}

func (e *Engine) ref() Ref {
	if e.doc == nil {
		return Ref{Epoch: e.epoch}
	}
	return Ref{DocumentID: e.doc.ID, Epoch: e.epoch}
}

func (e *Engine) current(r Ref) bool {
	return e.doc != nil && r.Epoch == e.epoch && r.DocumentID == e.doc.ID
}

func (e *Engine) cancelChat() {
	if e.chatCancel != nil {
		e.chatCancel()
		e.chatCancel = nil
	}
}

func (e *Engine) requireDocument(name Experience) error {
	if !e.IsExperienceEnabled(name) {
		return fmt.Errorf("%s: %w", name, ErrNoDocument)
	}
	return nil
}
