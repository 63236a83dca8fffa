// Package slog provides logging decorators for docdex interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docdex/docdex"
)

// Ensure Embedder implements docdex.Embedder.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder wraps an Embedder with debug logging of batch sizes and call
// durations.
type Embedder struct {
	next   docdex.Embedder
	logger *slog.Logger
}

// NewEmbedder creates a logging Embedder decorator.
func NewEmbedder(next docdex.Embedder, logger *slog.Logger) *Embedder {
	return &Embedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder, logging the call.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	begin := time.Now()
	vector, err := e.next.Embed(ctx, text)
	e.logger.Debug("embed",
		"model", e.next.Model(),
		"chars", len(text),
		"duration", time.Since(begin),
		"error", err,
	)
	return vector, err
}

// EmbedBatch delegates to the wrapped embedder, logging batch size and
// duration.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	begin := time.Now()
	vectors, err := e.next.EmbedBatch(ctx, texts)
	e.logger.Debug("embed batch",
		"model", e.next.Model(),
		"texts", len(texts),
		"duration", time.Since(begin),
		"error", err,
	)
	return vectors, err
}

// Dimension delegates to the wrapped embedder.
func (e *Embedder) Dimension() int {
	return e.next.Dimension()
}

// Model delegates to the wrapped embedder.
func (e *Embedder) Model() string {
	return e.next.Model()
}
