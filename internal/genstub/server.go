// Package genstub serves a local, deterministic stand-in for the generation
// service. It answers every endpoint the client uses without a language
// model, which makes it useful for development and for end-to-end tests.
package genstub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	DefaultAddr     = "127.0.0.1:8000"
	maxUploadMemory = 32 << 20
)

type Options struct {
	Logger *zap.Logger
	// ChunkDelay is the pause between streamed chat chunks.
	ChunkDelay time.Duration
	// DisableStreaming leaves the streaming chat route unregistered so
	// clients exercise their fallback path.
	DisableStreaming bool
	// RequestLog enables chi's request logger middleware.
	RequestLog bool
}

// Server is the stub generation service.
type Server struct {
	log        *zap.Logger
	chunkDelay time.Duration
	router     chi.Router
	server     *http.Server

	mu      sync.Mutex
	quizzes map[string]storedQuiz
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:        log,
		chunkDelay: opts.ChunkDelay,
		quizzes:    make(map[string]storedQuiz),
	}

	r := chi.NewRouter()
	if opts.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents/upload", s.handleUpload)
		r.Post("/documents/summarize", s.handleSummarize)
		r.Post("/chat/message", s.handleChat)
		if !opts.DisableStreaming {
			r.Post("/chat/message/stream", s.handleChatStream)
		}
		r.Post("/quiz/generate", s.handleGenerateQuiz)
		r.Post("/quiz/check-answer", s.handleCheckAnswer)
	})
	r.Get("/health", s.handleHealth)

	s.router = r
	return s
}

// Handler exposes the router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("stub generation service listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) saveQuiz(q storedQuiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
}

func (s *Server) lookupQuiz(id string) (storedQuiz, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	return q, ok
}
