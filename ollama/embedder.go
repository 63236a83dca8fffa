// Package ollama provides an embedding backend implementation over a local
// Ollama server's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/docdex/docdex"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// cacheSize bounds the in-process embedding cache.
const cacheSize = 10000

// Compile-time interface verification.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder implements docdex.Embedder using Ollama's /api/embed endpoint.
// Identical texts are served from an LRU cache keyed by content hash, and
// requests to the backend are rate limited client-side so large syncs don't
// overwhelm a local model server.
type Embedder struct {
	baseURL     string
	model       string
	dim         int
	httpClient  *http.Client
	cache       *lru.Cache[uint64, []float32]
	limiter     *rate.Limiter
	retryDelays []time.Duration
}

// Options configures an Embedder beyond its defaults.
type Options struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// Timeout bounds a single backend call. Defaults to 30s.
	Timeout time.Duration

	// RetryDelays overrides docdex.DefaultRetryDelays.
	RetryDelays []time.Duration

	// RequestsPerSecond limits backend calls. Zero disables limiting.
	RequestsPerSecond float64
}

// NewEmbedder creates an Embedder for the given model producing vectors of
// the given dimension.
func NewEmbedder(model string, dim int, opts Options) (*Embedder, error) {
	if model == "" {
		return nil, docdex.Errorf(docdex.ECONFIG, "embedding model required")
	}
	if dim <= 0 {
		return nil, docdex.Errorf(docdex.ECONFIG, "embedding dimension must be positive")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	delays := opts.RetryDelays
	if delays == nil {
		delays = docdex.DefaultRetryDelays()
	}

	cache, err := lru.New[uint64, []float32](cacheSize)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Embedder{
		baseURL:     baseURL,
		model:       model,
		dim:         dim,
		httpClient:  &http.Client{Timeout: timeout},
		cache:       cache,
		limiter:     limiter,
		retryDelays: delays,
	}, nil
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, order-preserving. Texts
// already in the cache are not sent to the backend.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "no texts to embed")
	}
	for i, text := range texts {
		if text == "" {
			return nil, docdex.Errorf(docdex.EINVALID, "text at index %d is empty", i)
		}
	}

	vectors := make([][]float32, len(texts))

	// Serve cached texts locally; collect the rest for one backend call.
	var missing []int
	for i, text := range texts {
		if v, ok := e.cache.Get(xxhash.Sum64String(text)); ok {
			vectors[i] = v
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	input := make([]string, len(missing))
	for i, idx := range missing {
		input[i] = texts[idx]
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	embedded, err := docdex.RetryWithDelays(ctx, e.retryDelays, func() ([][]float32, error) {
		return e.callAPI(ctx, input)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docdex.Errorf(docdex.EUNAVAILABLE,
			"embedding backend unavailable after %d attempts: %v", len(e.retryDelays)+1, err)
	}

	if len(embedded) != len(input) {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE,
			"embedding backend returned %d vectors for %d inputs", len(embedded), len(input))
	}

	for i, idx := range missing {
		v := embedded[i]
		if len(v) != e.dim {
			return nil, docdex.Errorf(docdex.ECONFIG,
				"embedding dimension mismatch: backend returned %d, configured %d", len(v), e.dim)
		}
		e.cache.Add(xxhash.Sum64String(texts[idx]), v)
		vectors[idx] = v
	}

	return vectors, nil
}

// callAPI performs one POST to /api/embed.
func (e *Embedder) callAPI(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(msg))
	}

	var apiResp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Embeddings, nil
}

// Dimension returns the configured vector length.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}
