package httpapi

import (
	"net/http"

	"github.com/yungbote/docqa-backend/internal/config"
	apiv1 "github.com/yungbote/docqa-backend/internal/httpapi/v1"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag"
)

func NewServer(cfg *config.Config, log *logger.Logger, svc *rag.Service) *http.Server {
	h := NewHandler(cfg, log, svc)

	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		WriteTimeout:      0,
	}
}

func NewHandler(cfg *config.Config, log *logger.Logger, svc *rag.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz)

	apiv1.Register(mux, cfg, log, svc)

	var h http.Handler = mux
	h = recoverMiddleware(log)(h)
	h = accessLogMiddleware(log)(h)
	h = requestIDMiddleware()(h)

	return h
}
