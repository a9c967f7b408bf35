package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yungbote/docqa-backend/internal/config"
	"github.com/yungbote/docqa-backend/internal/httpapi/httputil"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag"
)

func handleQuery(cfg *config.Config, log *logger.Logger, svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		var in QueryRequest
		if err := httputil.DecodeJSON(w, req, cfg.HTTP.MaxRequestBytes, &in); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "invalid_request", "")
			return
		}
		if strings.TrimSpace(in.Question) == "" {
			WriteError(w, http.StatusBadRequest, "question is required", "invalid_request", "question")
			return
		}

		res, err := svc.Query(ctx, in.Question)
		if err != nil {
			log.Error("query failed", "error", err)
			writeServiceError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, QueryResponse{
			Answer:     res.Answer,
			Sources:    res.Sources,
			Confidence: res.Confidence,
			Metadata:   res.Metadata,
		})
	}
}

func handleQueryStream(cfg *config.Config, log *logger.Logger, svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		var in QueryRequest
		if err := httputil.DecodeJSON(w, req, cfg.HTTP.MaxRequestBytes, &in); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "invalid_request", "")
			return
		}
		if strings.TrimSpace(in.Question) == "" {
			WriteError(w, http.StatusBadRequest, "question is required", "invalid_request", "question")
			return
		}

		chunks, err := svc.QueryStream(ctx, in.Question)
		if err != nil {
			log.Error("query stream failed", "error", err)
			writeServiceError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "server_error", "")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		for chunk := range chunks {
			if chunk.Err != nil {
				payload, _ := json.Marshal(map[string]any{"error": chunk.Err.Error()})
				_ = httputil.WriteSSE(w, "", string(payload))
				flusher.Flush()
				return
			}
			payload, _ := json.Marshal(map[string]any{"chunk": chunk.Text})
			_ = httputil.WriteSSE(w, "", string(payload))
			flusher.Flush()
		}

		payload, _ := json.Marshal(map[string]any{"done": true})
		_ = httputil.WriteSSE(w, "", string(payload))
		flusher.Flush()
	}
}

func handleStats(svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		stats := svc.Stats(req.Context())
		httputil.WriteJSON(w, http.StatusOK, StatsResponse{
			TotalPoints:      stats.TotalPoints,
			VectorsCount:     stats.VectorsCount,
			CollectionName:   stats.CollectionName,
			IsReady:          stats.IsReady,
			VectorDimensions: stats.VectorDimensions,
		})
	}
}
