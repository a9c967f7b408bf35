package mock

import (
	"context"
	"strings"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	e := New()

	a, err := e.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(a) != 2 || len(a[0]) != 8 {
		t.Fatalf("shape: %d x %d", len(a), len(a[0]))
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("vector %d differs at %d", i, j)
			}
		}
	}
}

func TestEmbedDistinctInputsDiffer(t *testing.T) {
	e := New()
	vecs, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	same := true
	for j := range vecs[0] {
		if vecs[0][j] != vecs[1][j] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different inputs produced identical vectors")
	}
}

func TestEmbedCustomDims(t *testing.T) {
	e := &Engine{EmbeddingDims: 4}
	vecs, err := e.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs[0]) != 4 {
		t.Fatalf("dims=%d", len(vecs[0]))
	}
}

func TestEmbedFailure(t *testing.T) {
	e := &Engine{EmbeddingDims: 8, FailEmbed: true}
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGenerateText(t *testing.T) {
	e := New()
	out, err := e.GenerateText(context.Background(), "system", "question text")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if !strings.Contains(out, "question text") {
		t.Fatalf("out=%q", out)
	}
}

func TestStreamTextMatchesBatch(t *testing.T) {
	e := New()
	user := strings.Repeat("streamed answer content ", 10)

	full, err := e.GenerateText(context.Background(), "", user)
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}

	var b strings.Builder
	streamed, err := e.StreamText(context.Background(), "", user, func(delta string) {
		b.WriteString(delta)
	})
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	if streamed != full {
		t.Fatalf("streamed return differs from batch")
	}
	if b.String() != full {
		t.Fatalf("concatenated deltas differ from batch output")
	}
}

func TestStreamTextCancellation(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.StreamText(ctx, "", strings.Repeat("x", 100), func(string) {})
	if err == nil {
		t.Fatalf("expected context error")
	}
}
