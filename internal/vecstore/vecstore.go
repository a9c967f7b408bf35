package vecstore

import "context"

// Point is one stored vector with its payload. ID is the point
// identifier in the backing store and must be globally unique.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a search hit. Score is similarity, higher is better.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

type CollectionInfo struct {
	Name        string
	VectorWidth int
	PointCount  int64
	Status      string
}

// Store is the vector database capability surface. An implementation is
// bound to exactly one named collection; the pipeline owns that
// collection's lifecycle through this interface.
type Store interface {
	// Collection returns the bound collection name.
	Collection() string

	// Health reports whether the store itself is reachable. A failing
	// health check is fatal to the pipeline; nothing else is attempted.
	Health(ctx context.Context) error

	CreateCollection(ctx context.Context, vectorWidth int) error
	DeleteCollection(ctx context.Context) error

	// DescribeCollection returns the live collection configuration.
	// A missing collection yields an OperationError with code not_found.
	DescribeCollection(ctx context.Context) (CollectionInfo, error)

	CountPoints(ctx context.Context) (int64, error)

	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit nearest neighbors of vector, payloads
	// included, ordered by descending similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error)
}
