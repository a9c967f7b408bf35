package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// reconciler drives the collection toward a state compatible with the
// embedding engine: the collection exists, its vector width matches the
// engine's output width, and it answers queries.
type reconciler struct {
	engine    engine.Engine
	store     vecstore.Store
	log       *logger.Logger
	probeText string

	mu          sync.Mutex
	cachedWidth int
}

func newReconciler(eng engine.Engine, store vecstore.Store, log *logger.Logger, probeText string) *reconciler {
	if probeText == "" {
		probeText = "dimension probe"
	}
	return &reconciler{engine: eng, store: store, log: log, probeText: probeText}
}

// VectorWidth returns the engine's embedding width, probing the engine
// on first use and caching the result.
func (r *reconciler) VectorWidth(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vectorWidthLocked(ctx)
}

func (r *reconciler) vectorWidthLocked(ctx context.Context) (int, error) {
	if r.cachedWidth > 0 {
		return r.cachedWidth, nil
	}
	vectors, err := r.engine.Embed(ctx, []string{r.probeText})
	if err != nil {
		return 0, fmt.Errorf("%w: probe embedding: %v", ErrEmbedding, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("%w: probe embedding returned no vector", ErrEmbedding)
	}
	r.cachedWidth = len(vectors[0])
	r.log.Debug("probed embedding width", "width", r.cachedWidth)
	return r.cachedWidth, nil
}

// Invalidate drops the cached width so the next reconcile probes again.
// Called when an upsert reveals the cached width no longer matches the
// engine's output.
func (r *reconciler) Invalidate() {
	r.mu.Lock()
	r.cachedWidth = 0
	r.mu.Unlock()
}

// Reconcile ensures the collection exists with the engine's vector
// width and is able to serve searches. It returns the width the
// collection was reconciled to. Any state that cannot be verified is
// rebuilt rather than reported.
func (r *reconciler) Reconcile(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, err := r.vectorWidthLocked(ctx)
	if err != nil {
		return 0, err
	}

	if err := r.store.Health(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	info, err := r.store.DescribeCollection(ctx)
	switch {
	case err == nil && info.VectorWidth == width:
		if r.searchAlive(ctx, width) {
			return width, nil
		}
		r.log.Warn("collection failed liveness search, recreating", "collection", r.store.Collection())
		return width, r.recreateLocked(ctx, width)
	case err == nil:
		r.log.Warn("collection width mismatch, recreating",
			"collection", r.store.Collection(), "have", info.VectorWidth, "want", width)
		return width, r.recreateLocked(ctx, width)
	case vecstore.IsNotFound(err):
		r.log.Info("creating collection", "collection", r.store.Collection(), "width", width)
		if cerr := r.store.CreateCollection(ctx, width); cerr != nil {
			return 0, fmt.Errorf("%w: create collection: %v", ErrStoreUnavailable, cerr)
		}
		return width, nil
	default:
		// Unreadable metadata: treat as corrupt and rebuild.
		r.log.Warn("collection metadata unreadable, recreating",
			"collection", r.store.Collection(), "error", err)
		return width, r.recreateLocked(ctx, width)
	}
}

// ForceRecreate drops and recreates the collection regardless of its
// current state. Used by the ingest repair path after a dimension
// mismatch surfaced at write time.
func (r *reconciler) ForceRecreate(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, err := r.vectorWidthLocked(ctx)
	if err != nil {
		return 0, err
	}
	return width, r.recreateLocked(ctx, width)
}

func (r *reconciler) recreateLocked(ctx context.Context, width int) error {
	if err := r.store.DeleteCollection(ctx); err != nil && !vecstore.IsNotFound(err) {
		return fmt.Errorf("%w: delete collection: %v", ErrStoreUnavailable, err)
	}
	if err := r.store.CreateCollection(ctx, width); err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// searchAlive issues a zero-vector search against the collection. The
// result content is irrelevant; only whether the store can execute the
// query matters.
func (r *reconciler) searchAlive(ctx context.Context, width int) bool {
	_, err := r.store.Search(ctx, make([]float32, width), 1)
	return err == nil
}
