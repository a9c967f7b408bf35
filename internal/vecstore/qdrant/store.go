package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/docqa-backend/internal/config"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

const maxErrorBodyBytes = 1024

type store struct {
	log        *logger.Logger
	baseURL    string
	collection string
	http       *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantSearchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type collectionInfoResult struct {
	Status      string `json:"status"`
	PointsCount int64  `json:"points_count"`
	Config      struct {
		Params struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

func New(log *logger.Logger, cfg config.StoreConfig) (vecstore.Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant url required")
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		return nil, fmt.Errorf("qdrant collection required")
	}

	return &store{
		log:        log.With("service", "QdrantStore"),
		baseURL:    baseURL,
		collection: collection,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg config.StoreConfig, httpClient *http.Client) (vecstore.Store, error) {
	s, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		s.(*store).http = httpClient
	}
	return s, nil
}

func (s *store) Collection() string {
	return s.collection
}

func (s *store) Health(ctx context.Context) error {
	const op = "health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/readyz", nil)
	if err != nil {
		return vecstore.NewOperationError(op, vecstore.OperationErrorTransportFailed, "build ready request failed", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &vecstore.OperationError{
			Code:       vecstore.OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", resp.StatusCode),
		}
	}
	return nil
}

func (s *store) CreateCollection(ctx context.Context, vectorWidth int) error {
	const op = "create_collection"
	if vectorWidth <= 0 {
		return vecstore.NewOperationError(op, vecstore.OperationErrorValidation, fmt.Sprintf("invalid vector width %d", vectorWidth), nil)
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     vectorWidth,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, op, http.MethodPut, s.collectionPath(""), req, nil); err != nil {
		return err
	}
	s.log.Info("collection created", "collection", s.collection, "vector_width", vectorWidth)
	return nil
}

func (s *store) DeleteCollection(ctx context.Context) error {
	const op = "delete_collection"
	err := s.doJSON(ctx, op, http.MethodDelete, s.collectionPath(""), nil, nil)
	if err != nil && !vecstore.IsNotFound(err) {
		return err
	}
	return nil
}

func (s *store) DescribeCollection(ctx context.Context) (vecstore.CollectionInfo, error) {
	const op = "describe_collection"

	var result collectionInfoResult
	if err := s.doJSON(ctx, op, http.MethodGet, s.collectionPath(""), nil, &result); err != nil {
		return vecstore.CollectionInfo{}, err
	}

	return vecstore.CollectionInfo{
		Name:        s.collection,
		VectorWidth: result.Config.Params.Vectors.Size,
		PointCount:  result.PointsCount,
		Status:      result.Status,
	}, nil
}

func (s *store) CountPoints(ctx context.Context) (int64, error) {
	const op = "count_points"

	req := map[string]any{"exact": true}
	var result struct {
		Count int64 `json:"count"`
	}
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/count"), req, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (s *store) Upsert(ctx context.Context, points []vecstore.Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}

	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return vecstore.NewOperationError(op, vecstore.OperationErrorValidation, "point id is required", nil)
		}
		if len(p.Vector) == 0 {
			return vecstore.NewOperationError(op, vecstore.OperationErrorValidation, fmt.Sprintf("point %q has empty vector", id), nil)
		}
		body = append(body, map[string]any{
			"id":      id,
			"vector":  p.Vector,
			"payload": p.Payload,
		})
	}

	req := map[string]any{"points": body}
	return s.doJSON(ctx, op, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil)
}

func (s *store) Search(ctx context.Context, vector []float32, limit int) ([]vecstore.ScoredPoint, error) {
	const op = "search"
	if len(vector) == 0 {
		return nil, vecstore.NewOperationError(op, vecstore.OperationErrorValidation, "query vector required", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	var rawResults []qdrantSearchResultItem
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/search"), req, &rawResults); err != nil {
		return nil, err
	}

	out := make([]vecstore.ScoredPoint, 0, len(rawResults))
	for _, item := range rawResults {
		id := decodePointID(item.ID)
		if id == "" {
			continue
		}
		out = append(out, vecstore.ScoredPoint{
			ID:      id,
			Score:   item.Score,
			Payload: item.Payload,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *store) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return vecstore.NewOperationError(op, vecstore.OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return vecstore.NewOperationError(op, vecstore.OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*maxErrorBodyBytes))
	if readErr != nil {
		return vecstore.NewOperationError(op, vecstore.OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &vecstore.OperationError{
			Code:       classifyStatusError(resp.StatusCode, raw),
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return vecstore.NewOperationError(op, vecstore.OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &vecstore.OperationError{
			Code:       vecstore.OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return vecstore.NewOperationError(op, vecstore.OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func classifyStatusError(statusCode int, raw []byte) vecstore.OperationErrorCode {
	if statusCode == http.StatusNotFound {
		return vecstore.OperationErrorNotFound
	}
	// Qdrant reports width mismatches as 4xx with a message like
	// "Wrong input: Vector dimension error: expected dim: 768, got 256".
	lower := strings.ToLower(string(raw))
	if strings.Contains(lower, "vector dimension error") || strings.Contains(lower, "dimension mismatch") {
		return vecstore.OperationErrorDimensionMismatch
	}
	return vecstore.OperationErrorQueryFailed
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return vecstore.NewOperationError(op, vecstore.OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return vecstore.NewOperationError(op, vecstore.OperationErrorTimeout, message, err)
	}
	return vecstore.NewOperationError(op, vecstore.OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}

	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") || strings.EqualFold(statusString, "acknowledged") || strings.EqualFold(statusString, "completed") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}

	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil {
		if strings.TrimSpace(statusObject.Error) != "" {
			return strings.TrimSpace(statusObject.Error)
		}
	}

	return fmt.Sprintf("qdrant status=%s", status)
}

func decodePointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return strings.TrimSpace(idString)
	}
	var idNumber int64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

func (s *store) collectionPath(suffix string) string {
	path := "/collections/" + s.collection
	if strings.TrimSpace(suffix) == "" {
		return path
	}
	return path + suffix
}
