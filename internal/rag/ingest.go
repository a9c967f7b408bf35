package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag/chunker"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// IngestResult reports what a single ingestion wrote.
type IngestResult struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	Collection string `json:"collection"`
}

// ingestor splits text into chunks, embeds them and writes them to the
// collection, repairing the collection once if the write reveals a
// vector width mismatch.
type ingestor struct {
	engine      engine.Engine
	store       vecstore.Store
	collections *collectionManager
	reconciler  *reconciler
	log         *logger.Logger

	chunkSize    int
	chunkOverlap int
	settleDelay  time.Duration
}

func newIngestor(eng engine.Engine, store vecstore.Store, cm *collectionManager, rec *reconciler, log *logger.Logger, chunkSize, chunkOverlap int, settleDelay time.Duration) *ingestor {
	return &ingestor{
		engine:       eng,
		store:        store,
		collections:  cm,
		reconciler:   rec,
		log:          log,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		settleDelay:  settleDelay,
	}
}

// Ingest chunks text, embeds every chunk and upserts the results. All
// chunks of one call share a timestamp so a document's chunks can be
// grouped later.
func (ing *ingestor) Ingest(ctx context.Context, text string, meta Metadata) (IngestResult, error) {
	chunks, err := chunker.Split(text, ing.chunkSize, ing.chunkOverlap)
	if err != nil {
		return IngestResult{}, fmt.Errorf("split: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	docs := make([]ChunkDocument, len(chunks))
	for i, chunk := range chunks {
		m := meta
		m.ChunkIndex = i
		m.ChunkID = uuid.NewString()
		m.Timestamp = now
		docs[i] = ChunkDocument{Content: chunk, Metadata: m}
	}

	if _, err := ing.collections.EnsureReady(ctx); err != nil {
		return IngestResult{}, err
	}

	if err := ing.embedAndUpsert(ctx, docs); err != nil {
		if !vecstore.IsDimensionMismatch(err) {
			return IngestResult{}, err
		}
		// The cached width diverged from what the store accepts.
		// Re-probe, rebuild the collection and retry once.
		ing.log.Warn("upsert hit dimension mismatch, repairing collection", "source", meta.Source)
		ing.reconciler.Invalidate()
		if _, rerr := ing.collections.Repair(ctx); rerr != nil {
			return IngestResult{}, rerr
		}
		if err := ing.embedAndUpsert(ctx, docs); err != nil {
			return IngestResult{}, fmt.Errorf("%w: retry after repair: %v", ErrIngestion, err)
		}
	}

	if ing.settleDelay > 0 {
		timer := time.NewTimer(ing.settleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return IngestResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	ing.log.Info("ingested document",
		"source", meta.Source, "chunks", len(docs), "collection", ing.store.Collection())
	return IngestResult{
		Source:     meta.Source,
		ChunkCount: len(docs),
		Collection: ing.store.Collection(),
	}, nil
}

func (ing *ingestor) embedAndUpsert(ctx context.Context, docs []ChunkDocument) error {
	inputs := make([]string, len(docs))
	for i, d := range docs {
		inputs[i] = d.Content
	}
	vectors, err := ing.engine.Embed(ctx, inputs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbedding, len(vectors), len(docs))
	}

	points := make([]vecstore.Point, len(docs))
	for i, d := range docs {
		points[i] = vecstore.Point{
			ID:      d.Metadata.ChunkID,
			Vector:  vectors[i],
			Payload: payloadFromDocument(d),
		}
	}
	if err := ing.store.Upsert(ctx, points); err != nil {
		if vecstore.IsDimensionMismatch(err) {
			return err
		}
		return fmt.Errorf("%w: upsert: %v", ErrIngestion, err)
	}
	return nil
}
