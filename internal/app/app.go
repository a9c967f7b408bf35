package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/yungbote/docqa-backend/internal/config"
	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/engine/mock"
	"github.com/yungbote/docqa-backend/internal/engine/oaihttp"
	"github.com/yungbote/docqa-backend/internal/httpapi"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag"
	"github.com/yungbote/docqa-backend/internal/vecstore"
	"github.com/yungbote/docqa-backend/internal/vecstore/memory"
	"github.com/yungbote/docqa-backend/internal/vecstore/qdrant"
)

type App struct {
	Log     *logger.Logger
	Config  *config.Config
	Service *rag.Service

	server *http.Server
}

func New() (*App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, log)
	if err != nil {
		return nil, err
	}

	svc := rag.NewService(eng, store, log, rag.Options{
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		TopK:         cfg.RAG.TopK,
		ProbeText:    cfg.RAG.ProbeText,
		SettleDelay:  cfg.RAG.SettleDelay.Duration,
	})

	srv := httpapi.NewServer(cfg, log, svc)

	return &App{
		Log:     log,
		Config:  cfg,
		Service: svc,
		server:  srv,
	}, nil
}

func newEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine.Type {
	case "mock":
		return mock.New(), nil
	case "oai_http":
		return oaihttp.New(cfg.Engine)
	default:
		return nil, fmt.Errorf("unknown engine type %q", cfg.Engine.Type)
	}
}

func newStore(cfg *config.Config, log *logger.Logger) (vecstore.Store, error) {
	switch cfg.Store.Type {
	case "qdrant":
		return qdrant.New(log, cfg.Store)
	case "memory":
		return memory.New(cfg.Store.Collection), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.Log.Info("server starting", "addr", a.Config.HTTP.Addr,
		"store", a.Config.Store.Type, "engine", a.Config.Engine.Type)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
		a.Log.Sync()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
