package docdex

import "context"

// Embedder converts text into fixed-length vectors via an embedding backend.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	// Empty input returns EINVALID without contacting the backend.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, order-preserving.
	// Empty input slices and empty elements return EINVALID.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the constant vector length this backend produces.
	Dimension() int

	// Model returns the embedding model name.
	Model() string
}

// TokenCounter counts tokens in text for a specific model. The chunker uses
// it to bound chunk sizes without generating embeddings.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
