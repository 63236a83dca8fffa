package docdex

import "time"

// Config holds process-wide settings, built once at startup and passed
// explicitly to constructors. There is no global state.
type Config struct {
	// DBPath is the SQLite database location. ":memory:" is valid.
	DBPath string

	// TokenLimit is the maximum token count for a produced chunk.
	TokenLimit int

	// EmbedDimension is the vector length the configured backend produces.
	// Stored embeddings with a different length are rejected at write time.
	EmbedDimension int

	// EmbedModel is the embedding model name.
	EmbedModel string

	// EmbedTimeout bounds a single embedding backend call.
	EmbedTimeout time.Duration

	// RetryDelays are the backoff delays applied between embedding retries.
	// len(RetryDelays)+1 is the total attempt ceiling.
	RetryDelays []time.Duration

	// EmbedRequestsPerSecond limits calls to the embedding backend so large
	// syncs don't overwhelm a local model server. Zero disables limiting.
	EmbedRequestsPerSecond float64

	// Concurrency is the worker pool size for parallel file ingestion.
	Concurrency int

	// CheckoutTimeout bounds a git clone/checkout.
	CheckoutTimeout time.Duration
}

// DefaultConfig returns the settings used when no flags override them.
func DefaultConfig() Config {
	return Config{
		TokenLimit:             512,
		EmbedDimension:         768,
		EmbedModel:             "nomic-embed-text",
		EmbedTimeout:           30 * time.Second,
		RetryDelays:            DefaultRetryDelays(),
		EmbedRequestsPerSecond: 10,
		Concurrency:            8,
		CheckoutTimeout:        5 * time.Minute,
	}
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.TokenLimit <= 0 {
		return Errorf(ECONFIG, "token limit must be positive")
	}
	if c.EmbedDimension <= 0 {
		return Errorf(ECONFIG, "embedding dimension must be positive")
	}
	if c.EmbedModel == "" {
		return Errorf(ECONFIG, "embedding model required")
	}
	if c.EmbedRequestsPerSecond < 0 {
		return Errorf(ECONFIG, "embed rate limit must not be negative")
	}
	if c.Concurrency <= 0 {
		return Errorf(ECONFIG, "concurrency must be positive")
	}
	return nil
}
