package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yungbote/docqa-backend/internal/rag"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, message string, code string, param string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}

	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorBody{
			Message: msg,
			Code:    strings.TrimSpace(code),
			Param:   strings.TrimSpace(param),
		},
	})
}

// writeServiceError maps pipeline error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rag.ErrNotInitialized):
		WriteError(w, http.StatusConflict, "pipeline not initialized: ingest a document or call initialize first", "not_initialized", "")
	case errors.Is(err, rag.ErrEmptyInput):
		WriteError(w, http.StatusBadRequest, err.Error(), "invalid_request", "")
	case errors.Is(err, rag.ErrUnsupportedType):
		WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "unsupported_type", "file")
	case errors.Is(err, rag.ErrStoreUnavailable):
		WriteError(w, http.StatusBadGateway, err.Error(), "store_unavailable", "")
	case errors.Is(err, rag.ErrEmbedding), errors.Is(err, rag.ErrGeneration):
		WriteError(w, http.StatusBadGateway, err.Error(), "engine_error", "")
	case errors.Is(err, rag.ErrRetrievalExhausted):
		WriteError(w, http.StatusBadGateway, err.Error(), "retrieval_exhausted", "")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "internal_error", "")
	}
}
