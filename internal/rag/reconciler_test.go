package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/docqa-backend/internal/engine/mock"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
	"github.com/yungbote/docqa-backend/internal/vecstore/memory"
)

func TestReconcilerProbesOnce(t *testing.T) {
	ctx := context.Background()
	eng := mock.New()
	rec := newReconciler(eng, memory.New("documents"), logger.NewNop(), "")

	w1, err := rec.VectorWidth(ctx)
	if err != nil {
		t.Fatalf("VectorWidth: %v", err)
	}
	if w1 != 8 {
		t.Fatalf("width=%d", w1)
	}

	// A second call must not probe again: break the engine and expect
	// the cached value.
	eng.FailEmbed = true
	w2, err := rec.VectorWidth(ctx)
	if err != nil {
		t.Fatalf("cached VectorWidth: %v", err)
	}
	if w2 != w1 {
		t.Fatalf("cached width=%d, want %d", w2, w1)
	}
}

func TestReconcilerInvalidateForcesReprobe(t *testing.T) {
	ctx := context.Background()
	eng := mock.New()
	rec := newReconciler(eng, memory.New("documents"), logger.NewNop(), "")

	if _, err := rec.VectorWidth(ctx); err != nil {
		t.Fatalf("VectorWidth: %v", err)
	}

	rec.Invalidate()
	eng.EmbeddingDims = 16
	w, err := rec.VectorWidth(ctx)
	if err != nil {
		t.Fatalf("VectorWidth after invalidate: %v", err)
	}
	if w != 16 {
		t.Fatalf("width=%d, want re-probed 16", w)
	}
}

func TestReconcilerProbeFailure(t *testing.T) {
	eng := mock.New()
	eng.FailEmbed = true
	rec := newReconciler(eng, memory.New("documents"), logger.NewNop(), "")

	if _, err := rec.Reconcile(context.Background()); !errors.Is(err, ErrEmbedding) {
		t.Fatalf("err=%v, want ErrEmbedding", err)
	}
}

// deadSearchStore reports a healthy, correctly sized collection whose
// searches fail.
type deadSearchStore struct {
	vecstore.Store
	recreated bool
}

func (s *deadSearchStore) Search(ctx context.Context, vector []float32, limit int) ([]vecstore.ScoredPoint, error) {
	if s.recreated {
		return s.Store.Search(ctx, vector, limit)
	}
	return nil, vecstore.NewOperationError("search", vecstore.OperationErrorQueryFailed, "index corrupt", nil)
}

func (s *deadSearchStore) DeleteCollection(ctx context.Context) error {
	s.recreated = true
	return s.Store.DeleteCollection(ctx)
}

func TestReconcilerRecreatesWhenSearchDead(t *testing.T) {
	ctx := context.Background()
	inner := memory.New("documents")
	inner.Seed(8, nil)
	dead := &deadSearchStore{Store: inner}

	rec := newReconciler(mock.New(), dead, logger.NewNop(), "")
	width, err := rec.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if width != 8 {
		t.Fatalf("width=%d", width)
	}
	if !dead.recreated {
		t.Fatalf("dead collection was not recreated")
	}
}

// downStore fails its health check.
type downStore struct {
	vecstore.Store
}

func (s *downStore) Health(ctx context.Context) error {
	return vecstore.NewOperationError("health", vecstore.OperationErrorTransportFailed, "connection refused", nil)
}

func TestReconcilerStoreUnavailable(t *testing.T) {
	rec := newReconciler(mock.New(), &downStore{Store: memory.New("documents")}, logger.NewNop(), "")
	if _, err := rec.Reconcile(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err=%v, want ErrStoreUnavailable", err)
	}
}
