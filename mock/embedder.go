package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docdex.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
	DimensionFn  func() int
	ModelFn      func() string
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedBatchFn(ctx, texts)
}

func (e *Embedder) Dimension() int {
	return e.DimensionFn()
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}

var _ docdex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of docdex.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
