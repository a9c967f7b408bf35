package v1

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/yungbote/docqa-backend/internal/config"
	"github.com/yungbote/docqa-backend/internal/httpapi/httputil"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag"
)

func handleInitialize(log *logger.Logger, svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		col, err := svc.Initialize(req.Context())
		if err != nil {
			log.Error("initialize failed", "error", err)
			writeServiceError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, InitializeResponse{
			Collection:      col.Name,
			VectorDimension: col.VectorWidth,
			DistanceMetric:  col.DistanceMetric,
			PointCount:      col.PointCount,
		})
	}
}

// handleIngestDocument accepts either a multipart upload under the
// "file" field or a JSON body with inline content.
func handleIngestDocument(cfg *config.Config, log *logger.Logger, svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		filename, mimeType, data, err := readDocument(w, req, cfg.HTTP.MaxRequestBytes)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "invalid_request", "")
			return
		}
		if len(data) == 0 {
			WriteError(w, http.StatusBadRequest, "document is empty", "invalid_request", "file")
			return
		}

		res, err := svc.IngestDocument(ctx, filename, mimeType, data)
		if err != nil {
			log.Error("ingest failed", "source", filename, "error", err)
			writeServiceError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, IngestResponse{
			Source:     res.Source,
			ChunkCount: res.ChunkCount,
			Collection: res.Collection,
		})
	}
}

func readDocument(w http.ResponseWriter, req *http.Request, maxBytes int64) (filename, mimeType string, data []byte, err error) {
	contentType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))

	if strings.HasPrefix(contentType, "multipart/") {
		if maxBytes > 0 {
			req.Body = http.MaxBytesReader(w, req.Body, maxBytes)
		}
		if err := req.ParseMultipartForm(maxBytes); err != nil {
			return "", "", nil, err
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			return "", "", nil, err
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		if err != nil {
			return "", "", nil, err
		}
		return header.Filename, header.Header.Get("Content-Type"), data, nil
	}

	var in IngestRequest
	if err := httputil.DecodeJSON(w, req, maxBytes, &in); err != nil {
		return "", "", nil, err
	}
	name := strings.TrimSpace(in.Filename)
	if name == "" {
		name = "document.txt"
	}
	return name, in.MimeType, []byte(in.Content), nil
}

func handleClear(log *logger.Logger, svc *rag.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := svc.Clear(req.Context()); err != nil {
			log.Error("clear failed", "error", err)
			writeServiceError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, ClearResponse{Cleared: true})
	}
}
