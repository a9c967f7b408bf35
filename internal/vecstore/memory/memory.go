package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// Store is an in-process vector store with cosine similarity. It backs
// tests and single-node development setups; durability is out of scope.
type Store struct {
	collection string

	mu     sync.RWMutex
	exists bool
	width  int
	points map[string]vecstore.Point
}

func New(collection string) *Store {
	return &Store{collection: collection}
}

// Seed pre-creates the collection with the given width and points,
// bypassing validation. Test helper for misconfigured-state scenarios.
func (s *Store) Seed(width int, points []vecstore.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	s.width = width
	s.points = make(map[string]vecstore.Point, len(points))
	for _, p := range points {
		s.points[p.ID] = p
	}
}

func (s *Store) Collection() string {
	return s.collection
}

func (s *Store) Health(ctx context.Context) error {
	_ = ctx
	return nil
}

func (s *Store) CreateCollection(ctx context.Context, vectorWidth int) error {
	_ = ctx
	const op = "create_collection"
	if vectorWidth <= 0 {
		return vecstore.NewOperationError(op, vecstore.OperationErrorValidation, "invalid vector width", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	s.width = vectorWidth
	s.points = make(map[string]vecstore.Point)
	return nil
}

func (s *Store) DeleteCollection(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = false
	s.width = 0
	s.points = nil
	return nil
}

func (s *Store) DescribeCollection(ctx context.Context) (vecstore.CollectionInfo, error) {
	_ = ctx
	const op = "describe_collection"
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return vecstore.CollectionInfo{}, vecstore.NewOperationError(op, vecstore.OperationErrorNotFound, "collection does not exist", nil)
	}
	return vecstore.CollectionInfo{
		Name:        s.collection,
		VectorWidth: s.width,
		PointCount:  int64(len(s.points)),
		Status:      "green",
	}, nil
}

func (s *Store) CountPoints(ctx context.Context) (int64, error) {
	_ = ctx
	const op = "count_points"
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return 0, vecstore.NewOperationError(op, vecstore.OperationErrorNotFound, "collection does not exist", nil)
	}
	return int64(len(s.points)), nil
}

func (s *Store) Upsert(ctx context.Context, points []vecstore.Point) error {
	_ = ctx
	const op = "upsert"
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return vecstore.NewOperationError(op, vecstore.OperationErrorNotFound, "collection does not exist", nil)
	}
	for _, p := range points {
		if p.ID == "" {
			return vecstore.NewOperationError(op, vecstore.OperationErrorValidation, "point id is required", nil)
		}
		if len(p.Vector) != s.width {
			return vecstore.NewOperationError(op, vecstore.OperationErrorDimensionMismatch, "vector dimension error", nil)
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vecstore.ScoredPoint, error) {
	_ = ctx
	const op = "search"
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return nil, vecstore.NewOperationError(op, vecstore.OperationErrorNotFound, "collection does not exist", nil)
	}
	if len(vector) != s.width {
		return nil, vecstore.NewOperationError(op, vecstore.OperationErrorDimensionMismatch, "vector dimension error", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	out := make([]vecstore.ScoredPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, vecstore.ScoredPoint{
			ID:      p.ID,
			Score:   cosine(vector, p.Vector),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
