package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// retrievalStrategy is one way of turning a question into scored
// chunks. Strategies are tried in order; the first one that yields a
// non-empty result wins.
type retrievalStrategy struct {
	name string
	run  func(ctx context.Context, question string, topK int) ([]ChunkDocument, error)
}

// retriever answers similarity queries against the collection using an
// ordered chain of strategies, from the fastest cached path down to a
// raw store search.
type retriever struct {
	engine engine.Engine
	store  vecstore.Store
	log    *logger.Logger

	mu    sync.RWMutex
	bound bool
}

func newRetriever(eng engine.Engine, store vecstore.Store, log *logger.Logger) *retriever {
	return &retriever{engine: eng, store: store, log: log}
}

// Rebind marks the cached retrieval binding fresh. Called after every
// successful ingest and after collection repair.
func (r *retriever) Rebind() {
	r.mu.Lock()
	r.bound = true
	r.mu.Unlock()
}

func (r *retriever) isBound() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bound
}

// Retrieve returns up to topK chunks relevant to the question. An empty
// collection short-circuits to ErrEmptyCorpus before any strategy runs.
// A strategy that runs cleanly but finds nothing ends the chain with an
// empty result and no error; only when every strategy fails is the last
// failure wrapped in ErrRetrievalExhausted.
func (r *retriever) Retrieve(ctx context.Context, question string, topK int) ([]ChunkDocument, error) {
	count, err := r.store.CountPoints(ctx)
	if err == nil && count == 0 {
		return nil, ErrEmptyCorpus
	}
	if err != nil {
		r.log.Debug("point count failed before retrieval", "error", err)
	}

	strategies := []retrievalStrategy{
		{name: "bound", run: r.retrieveBound},
		{name: "rebound", run: r.retrieveRebound},
		{name: "direct", run: r.retrieveDirect},
	}

	var (
		lastErr  error
		ranClean bool
	)
	for _, s := range strategies {
		docs, err := s.run(ctx, question, topK)
		if err == nil {
			if len(docs) > 0 {
				return docs, nil
			}
			ranClean = true
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.log.Warn("retrieval strategy failed", "strategy", s.name, "error", err)
		lastErr = err
	}
	if ranClean {
		// At least one strategy searched successfully and found
		// nothing. That is an empty result, not a failure.
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrRetrievalExhausted, lastErr)
}

// retrieveBound uses the binding established at ingest time and parses
// payloads strictly: a malformed payload fails the whole strategy so
// the chain can fall through to a more tolerant one.
func (r *retriever) retrieveBound(ctx context.Context, question string, topK int) ([]ChunkDocument, error) {
	if !r.isBound() {
		return nil, fmt.Errorf("no retrieval binding")
	}
	return r.search(ctx, question, topK, true)
}

// retrieveRebound re-establishes the binding and retries with lenient
// payload parsing.
func (r *retriever) retrieveRebound(ctx context.Context, question string, topK int) ([]ChunkDocument, error) {
	if _, err := r.store.DescribeCollection(ctx); err != nil {
		return nil, fmt.Errorf("rebind: %w", err)
	}
	r.Rebind()
	return r.search(ctx, question, topK, false)
}

// retrieveDirect skips the binding entirely and reconstructs documents
// from whatever payload fields are present.
func (r *retriever) retrieveDirect(ctx context.Context, question string, topK int) ([]ChunkDocument, error) {
	return r.search(ctx, question, topK, false)
}

func (r *retriever) search(ctx context.Context, question string, topK int, strict bool) ([]ChunkDocument, error) {
	vectors, err := r.engine.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("%w: question embedding: %v", ErrEmbedding, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: question embedding returned no vector", ErrEmbedding)
	}

	points, err := r.store.Search(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	docs := make([]ChunkDocument, 0, len(points))
	for _, p := range points {
		doc, err := documentFromPayload(p.Payload, p.Score, strict)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("point %s: %w", p.ID, err)
			}
			r.log.Debug("dropping unreadable point", "id", p.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
