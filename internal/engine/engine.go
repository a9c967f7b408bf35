package engine

import "context"

// Engine is the model capability surface the pipeline consumes. Embeddings
// and generation are treated as one upstream because every supported
// backend (OpenAI-compatible HTTP, mock) serves both.
type Engine interface {
	// Embed returns one fixed-width vector per input, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)

	// GenerateText produces a complete answer for a system+user prompt pair.
	GenerateText(ctx context.Context, system, user string) (string, error)

	// StreamText streams the answer incrementally through onDelta and
	// returns the accumulated text. Cancelling ctx stops the upstream call.
	StreamText(ctx context.Context, system, user string, onDelta func(delta string)) (string, error)
}
