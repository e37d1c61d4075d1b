package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GuardedProvider enforces input limits, a per-call timeout and the configured
// vector dimension around another provider.
type GuardedProvider struct {
	inner         EmbeddingProvider
	dimension     int
	maxInputChars int
	timeout       time.Duration
}

func NewGuardedProvider(inner EmbeddingProvider, dimension, maxInputChars int, timeout time.Duration) *GuardedProvider {
	return &GuardedProvider{
		inner:         inner,
		dimension:     dimension,
		maxInputChars: maxInputChars,
		timeout:       timeout,
	}
}

func (g *GuardedProvider) Version() string {
	return g.inner.Version()
}

func (g *GuardedProvider) Dimension() int {
	return g.dimension
}

func (g *GuardedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if g.maxInputChars > 0 && len([]rune(text)) > g.maxInputChars {
		return nil, fmt.Errorf("%w: %d > %d characters", ErrInputTooLong, len([]rune(text)), g.maxInputChars)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if g.dimension > 0 && len(res.Embedding.Values) != g.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(res.Embedding.Values), g.dimension)
	}
	return res, nil
}
