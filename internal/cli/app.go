package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jbonatakis/studydesk/internal/config"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/logging"
	"github.com/jbonatakis/studydesk/internal/session"
	"github.com/jbonatakis/studydesk/internal/summary"
	"go.uber.org/zap"
)

// app holds what every command needs: resolved settings, a logger and the
// generation service client.
type app struct {
	cfg    config.ResolvedConfig
	log    *zap.Logger
	client *genclient.Client
	store  *summary.Store
}

func loadApp() (*app, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	if err := config.LoadDotEnv(root); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Path: cfg.Log.Path, Debug: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	client, err := genclient.New(genclient.Config{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Logger:           logger.Named("genclient"),
		MaxDroppedFrames: cfg.Chat.MaxDroppedFrames,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    logger,
		client: client,
		store:  summary.NewStore(time.Duration(cfg.Summary.CacheTTLMinutes) * time.Minute),
	}, nil
}

func (a *app) engine(greet bool) *session.Engine {
	return session.New(a.client, session.Options{
		Logger:    a.log.Named("session"),
		Streaming: a.cfg.Chat.Streaming,
		Store:     a.store,
		Greet:     greet,
	})
}

// open uploads path and makes it the engine's active document.
func (a *app) open(ctx context.Context, e *session.Engine, path string) (session.Document, error) {
	doc, err := session.LoadDocument(ctx, a.client, path)
	if err != nil {
		return session.Document{}, fmt.Errorf("load %s: %s", path, genclient.Detail(err))
	}
	e.SetDocument(doc)
	return doc, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
