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

func seedPoint(t *testing.T, store *memory.Store, id string, payload map[string]any) {
	t.Helper()
	eng := mock.New()
	vecs, err := eng.Embed(context.Background(), []string{id})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	store.Seed(8, []vecstore.Point{{ID: id, Vector: vecs[0], Payload: payload}})
}

func TestRetrieveEmptyCorpusShortCircuits(t *testing.T) {
	store := memory.New("documents")
	store.Seed(8, nil)

	r := newRetriever(mock.New(), store, logger.NewNop())
	r.Rebind()

	_, err := r.Retrieve(context.Background(), "question", 5)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err=%v, want ErrEmptyCorpus", err)
	}
}

func TestRetrieveStrictPath(t *testing.T) {
	store := memory.New("documents")
	seedPoint(t, store, "p1", map[string]any{
		"pageContent": "chunk text",
		"metadata":    map[string]any{"source": "a.txt", "chunk_index": 0},
	})

	r := newRetriever(mock.New(), store, logger.NewNop())
	r.Rebind()

	docs, err := r.Retrieve(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "chunk text" || docs[0].Metadata.Source != "a.txt" {
		t.Fatalf("docs=%+v", docs)
	}
}

func TestRetrieveFallsBackOnMalformedPayload(t *testing.T) {
	store := memory.New("documents")
	// Content under a foreign key: the strict tier rejects it, the
	// lenient tiers recover it.
	seedPoint(t, store, "p1", map[string]any{"content": "recovered text"})

	r := newRetriever(mock.New(), store, logger.NewNop())
	r.Rebind()

	docs, err := r.Retrieve(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "recovered text" {
		t.Fatalf("docs=%+v", docs)
	}
}

func TestRetrieveSkipsBoundTierWhenUnbound(t *testing.T) {
	store := memory.New("documents")
	seedPoint(t, store, "p1", map[string]any{
		"pageContent": "chunk text",
		"metadata":    map[string]any{"source": "a.txt"},
	})

	// Fresh retriever with no binding: the second tier re-establishes it.
	r := newRetriever(mock.New(), store, logger.NewNop())

	docs, err := r.Retrieve(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs=%+v", docs)
	}
	if !r.isBound() {
		t.Fatalf("retrieval did not re-establish the binding")
	}
}

func TestRetrieveExhaustedWrapsLastError(t *testing.T) {
	store := memory.New("documents")
	seedPoint(t, store, "p1", map[string]any{"pageContent": "x", "metadata": map[string]any{}})

	eng := mock.New()
	eng.FailEmbed = true
	r := newRetriever(eng, store, logger.NewNop())
	r.Rebind()

	_, err := r.Retrieve(context.Background(), "question", 5)
	if !errors.Is(err, ErrRetrievalExhausted) {
		t.Fatalf("err=%v, want ErrRetrievalExhausted", err)
	}
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("err=%v, want underlying ErrEmbedding preserved", err)
	}
}

// noDescribeStore wraps a store whose collection cannot be described,
// which also blocks re-establishing the retrieval binding.
type noDescribeStore struct {
	vecstore.Store
}

func (s *noDescribeStore) DescribeCollection(ctx context.Context) (vecstore.CollectionInfo, error) {
	return vecstore.CollectionInfo{}, errors.New("describe failed")
}

func TestRetrieveDirectTierPassesResultsThrough(t *testing.T) {
	inner := memory.New("documents")
	seedPoint(t, inner, "p1", map[string]any{
		"pageContent": "surviving chunk",
		"metadata":    map[string]any{"source": "a.txt"},
	})

	// Unbound retriever over a store that cannot be described: the
	// first two strategies fail and the direct search must win.
	r := newRetriever(mock.New(), &noDescribeStore{Store: inner}, logger.NewNop())

	docs, err := r.Retrieve(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "surviving chunk" || docs[0].Metadata.Source != "a.txt" {
		t.Fatalf("docs=%+v", docs)
	}
	if r.isBound() {
		t.Fatalf("direct search must not establish a binding")
	}
}

// emptySearchStore reports points present but every search comes back
// empty.
type emptySearchStore struct {
	vecstore.Store
}

func (s *emptySearchStore) CountPoints(ctx context.Context) (int64, error) {
	return 3, nil
}

func (s *emptySearchStore) Search(ctx context.Context, vector []float32, limit int) ([]vecstore.ScoredPoint, error) {
	return nil, nil
}

func TestRetrieveCleanEmptyResultIsNotExhausted(t *testing.T) {
	r := newRetriever(mock.New(), &emptySearchStore{Store: memory.New("documents")}, logger.NewNop())
	r.Rebind()

	docs, err := r.Retrieve(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("docs=%+v, want none", docs)
	}
}

func TestRetrieveDropsUnreadablePointsLeniently(t *testing.T) {
	store := memory.New("documents")
	eng := mock.New()
	ctx := context.Background()

	vecs, err := eng.Embed(ctx, []string{"good", "bad"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	store.Seed(8, []vecstore.Point{
		{ID: "good", Vector: vecs[0], Payload: map[string]any{"content": "usable"}},
		{ID: "bad", Vector: vecs[1], Payload: map[string]any{"junk": 42}},
	})

	r := newRetriever(eng, store, logger.NewNop())
	docs, err := r.Retrieve(ctx, "question", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "usable" {
		t.Fatalf("docs=%+v", docs)
	}
}
