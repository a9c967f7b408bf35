package rag

import (
	"context"
	"fmt"

	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// collectionManager wraps the reconciler with the collection-facing
// operations the service exposes: readiness, stats, reset.
type collectionManager struct {
	store      vecstore.Store
	reconciler *reconciler
	log        *logger.Logger
}

func newCollectionManager(store vecstore.Store, rec *reconciler, log *logger.Logger) *collectionManager {
	return &collectionManager{store: store, reconciler: rec, log: log}
}

// EnsureReady reconciles the collection and returns its settled shape.
func (m *collectionManager) EnsureReady(ctx context.Context) (Collection, error) {
	width, err := m.reconciler.Reconcile(ctx)
	if err != nil {
		return Collection{}, err
	}
	count, err := m.store.CountPoints(ctx)
	if err != nil {
		// The collection was just reconciled; a count failure here is
		// transient and must not fail readiness.
		m.log.Warn("point count failed after reconcile", "error", err)
		count = 0
	}
	return Collection{
		Name:           m.store.Collection(),
		VectorWidth:    width,
		DistanceMetric: "cosine",
		PointCount:     count,
	}, nil
}

// Repair rebuilds the collection from scratch. All points are lost.
func (m *collectionManager) Repair(ctx context.Context) (Collection, error) {
	width, err := m.reconciler.ForceRecreate(ctx)
	if err != nil {
		return Collection{}, err
	}
	return Collection{
		Name:           m.store.Collection(),
		VectorWidth:    width,
		DistanceMetric: "cosine",
	}, nil
}

// Describe reports the collection's current state. It never returns an
// error: an unreachable or missing collection yields IsReady=false.
func (m *collectionManager) Describe(ctx context.Context) CollectionStats {
	stats := CollectionStats{CollectionName: m.store.Collection()}

	info, err := m.store.DescribeCollection(ctx)
	if err != nil {
		m.log.Debug("describe collection failed", "error", err)
		return stats
	}
	stats.VectorDimensions = info.VectorWidth
	stats.IsReady = info.Status == "green" || info.Status == "yellow" || info.Status == ""

	count, err := m.store.CountPoints(ctx)
	if err != nil {
		m.log.Debug("count points failed", "error", err)
		return stats
	}
	stats.TotalPoints = count
	stats.VectorsCount = count
	return stats
}

// Reset drops the collection. A missing collection is not an error.
func (m *collectionManager) Reset(ctx context.Context) error {
	if err := m.store.DeleteCollection(ctx); err != nil && !vecstore.IsNotFound(err) {
		return fmt.Errorf("%w: delete collection: %v", ErrStoreUnavailable, err)
	}
	m.reconciler.Invalidate()
	return nil
}
