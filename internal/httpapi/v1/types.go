package v1

import "github.com/yungbote/docqa-backend/internal/rag"

type InitializeResponse struct {
	Collection      string `json:"collection"`
	VectorDimension int    `json:"vector_dimension"`
	DistanceMetric  string `json:"distance_metric"`
	PointCount      int64  `json:"point_count"`
}

type IngestRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

type IngestResponse struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	Collection string `json:"collection"`
}

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	Answer     string              `json:"answer"`
	Sources    []rag.ChunkDocument `json:"sources"`
	Confidence float64             `json:"confidence"`
	Metadata   rag.QAMetadata      `json:"metadata"`
}

type StatsResponse struct {
	TotalPoints      int64  `json:"total_points"`
	VectorsCount     int64  `json:"vectors_count"`
	CollectionName   string `json:"collection_name"`
	IsReady          bool   `json:"is_ready"`
	VectorDimensions int    `json:"vector_dimensions"`
}

type ClearResponse struct {
	Cleared bool `json:"cleared"`
}
