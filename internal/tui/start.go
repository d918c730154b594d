package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jbonatakis/studydesk/internal/session"
	"go.uber.org/zap"
)

// Config wires the TUI to an engine and the upload endpoint.
type Config struct {
	Engine       *session.Engine
	Uploader     session.Uploader
	NumQuestions int
	// ExportDir receives exported summaries and quizzes.
	ExportDir string
	// InitialPath, when set, is loaded as soon as the program starts.
	InitialPath string
	Logger      *zap.Logger
}

func Start(cfg Config) error {
	if cfg.Engine == nil {
		return errors.New("tui: engine is required")
	}
	if cfg.Uploader == nil {
		return errors.New("tui: uploader is required")
	}
	model := NewModel(cfg)
	defer model.shutdown()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
