package v1

import (
	"net/http"

	"github.com/yungbote/docqa-backend/internal/config"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag"
)

func Register(mux *http.ServeMux, cfg *config.Config, log *logger.Logger, svc *rag.Service) {
	mux.HandleFunc("POST /v1/initialize", handleInitialize(log, svc))
	mux.HandleFunc("POST /v1/documents", handleIngestDocument(cfg, log, svc))
	mux.HandleFunc("POST /v1/query", handleQuery(cfg, log, svc))
	mux.HandleFunc("POST /v1/query/stream", handleQueryStream(cfg, log, svc))
	mux.HandleFunc("GET /v1/stats", handleStats(svc))
	mux.HandleFunc("POST /v1/clear", handleClear(log, svc))
}
