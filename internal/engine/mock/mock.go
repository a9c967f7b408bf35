package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Engine is a deterministic in-process engine for tests and local
// development. Vectors are derived from a hash of the input so equal
// texts always embed identically.
type Engine struct {
	EmbeddingDims int

	// FailEmbed and FailGenerate force errors, for exercising the
	// pipeline's fatal-capability paths.
	FailEmbed    bool
	FailGenerate bool
}

func New() *Engine {
	return &Engine{EmbeddingDims: 8}
}

func (e *Engine) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	_ = ctx
	if e.FailEmbed {
		return nil, fmt.Errorf("mock embed failure")
	}
	out := make([][]float32, len(inputs))
	for i, s := range inputs {
		h := sha256.Sum256([]byte(s))
		vec := make([]float32, e.EmbeddingDims)
		for j := 0; j < e.EmbeddingDims; j++ {
			u := binary.LittleEndian.Uint32(h[(j*4)%len(h):])
			vec[j] = float32(u%10_000)/10_000.0 - 0.5
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Engine) GenerateText(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	if e.FailGenerate {
		return "", fmt.Errorf("mock generate failure")
	}
	if strings.TrimSpace(user) == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock: %s", user), nil
}

func (e *Engine) StreamText(ctx context.Context, system, user string, onDelta func(delta string)) (string, error) {
	full, err := e.GenerateText(ctx, system, user)
	if err != nil {
		return "", err
	}
	if onDelta == nil {
		return full, nil
	}
	const chunk = 16
	for i := 0; i < len(full); i += chunk {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		end := i + chunk
		if end > len(full) {
			end = len(full)
		}
		onDelta(full[i:end])
	}
	return full, nil
}
