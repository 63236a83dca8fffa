// Package gemini provides an embedding backend and token counter over the
// Google Gemini API.
package gemini

import (
	"context"
	"time"

	"github.com/docdex/docdex"
	"google.golang.org/genai"
)

// Compile-time interface verification.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder implements docdex.Embedder using the Gemini embedding API.
// Transient failures are retried with bounded backoff; errors surfacing here
// have exhausted it.
type Embedder struct {
	client      *genai.Client
	model       string
	dim         int
	retryDelays []time.Duration
}

// Options configures an Embedder beyond its defaults.
type Options struct {
	// RetryDelays overrides docdex.DefaultRetryDelays.
	RetryDelays []time.Duration
}

// NewEmbedder creates an Embedder for the given model, requesting vectors of
// the given dimension.
func NewEmbedder(client *genai.Client, model string, dim int, opts Options) (*Embedder, error) {
	if model == "" {
		return nil, docdex.Errorf(docdex.ECONFIG, "embedding model required")
	}
	if dim <= 0 {
		return nil, docdex.Errorf(docdex.ECONFIG, "embedding dimension must be positive")
	}
	delays := opts.RetryDelays
	if delays == nil {
		delays = docdex.DefaultRetryDelays()
	}
	return &Embedder{client: client, model: model, dim: dim, retryDelays: delays}, nil
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, order-preserving.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "no texts to embed")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, docdex.Errorf(docdex.EINVALID, "text at index %d is empty", i)
		}
		contents[i] = genai.NewContentFromText(text, "user")
	}

	dim := int32(e.dim)
	result, err := docdex.RetryWithDelays(ctx, e.retryDelays, func() (*genai.EmbedContentResponse, error) {
		return e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			OutputDimensionality: &dim,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docdex.Errorf(docdex.EUNAVAILABLE,
			"gemini embedding failed after %d attempts: %v", len(e.retryDelays)+1, err)
	}
	if result == nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "gemini returned no embeddings")
	}
	if len(result.Embeddings) != len(texts) {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE,
			"gemini returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != e.dim {
			return nil, docdex.Errorf(docdex.ECONFIG,
				"embedding dimension mismatch: backend returned %d, configured %d", len(emb.Values), e.dim)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// Dimension returns the configured vector length.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}
