package rag

// Metadata travels with every chunk into the vector store payload.
type Metadata struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkID    string `json:"chunk_id"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Title      string `json:"title,omitempty"`
}

// ChunkDocument is one embedded unit of a source document. It is
// immutable once created and maps to exactly one stored point; the
// chunk id is the point identifier.
type ChunkDocument struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`

	// Score is the similarity reported by whichever retrieval tier
	// produced the document. Zero on freshly ingested chunks.
	Score float64 `json:"score,omitempty"`
}

// Collection describes the single logical collection the pipeline owns.
type Collection struct {
	Name           string
	VectorWidth    int
	DistanceMetric string
	PointCount     int64
}

type QAMetadata struct {
	RetrievalTimeMs  int64 `json:"retrieval_time_ms"`
	GenerationTimeMs int64 `json:"generation_time_ms"`
	ChunksUsed       int   `json:"chunks_used"`
}

// QAResult is the ephemeral response value for one question.
type QAResult struct {
	Answer     string          `json:"answer"`
	Sources    []ChunkDocument `json:"sources"`
	Confidence float64         `json:"confidence"`
	Metadata   QAMetadata      `json:"metadata"`
}

// CollectionStats is the reporting view of the collection. Producing it
// must never fail; a zero value with IsReady=false stands in for any
// read error.
type CollectionStats struct {
	TotalPoints      int64  `json:"total_points"`
	VectorsCount     int64  `json:"vectors_count"`
	CollectionName   string `json:"collection_name"`
	IsReady          bool   `json:"is_ready"`
	VectorDimensions int    `json:"vector_dimensions"`
}

// StreamChunk is one fragment of a streamed answer. At most one chunk
// in a stream carries Err, always the last one before the channel
// closes.
type StreamChunk struct {
	Text string
	Err  error
}
