package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embedServer fakes the Ollama /api/embed endpoint, answering each input with
// a vector of the given dimension whose first component is the input's length.
func embedServer(t *testing.T, dim int, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/embed", r.URL.Path)

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Model)

		embeddings := make([][]float32, len(req.Input))
		for i, text := range req.Input {
			v := make([]float32, dim)
			v[0] = float32(len(text))
			embeddings[i] = v
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings}))
	}))
}

// fastRetries keeps retry sleeps out of unit test runtime.
func fastRetries() []time.Duration {
	return []time.Duration{time.Millisecond, time.Millisecond}
}

func TestNewEmbedder(t *testing.T) {
	t.Parallel()

	t.Run("requires a model", func(t *testing.T) {
		t.Parallel()

		_, err := ollama.NewEmbedder("", 4, ollama.Options{})
		require.Error(t, err)
		assert.Equal(t, docdex.ECONFIG, docdex.ErrorCode(err))
	})

	t.Run("requires a positive dimension", func(t *testing.T) {
		t.Parallel()

		_, err := ollama.NewEmbedder("nomic-embed-text", 0, ollama.Options{})
		require.Error(t, err)
		assert.Equal(t, docdex.ECONFIG, docdex.ErrorCode(err))
	})

	t.Run("reports its model and dimension", func(t *testing.T) {
		t.Parallel()

		e, err := ollama.NewEmbedder("nomic-embed-text", 768, ollama.Options{})
		require.NoError(t, err)
		assert.Equal(t, "nomic-embed-text", e.Model())
		assert.Equal(t, 768, e.Dimension())
	})
}

func TestEmbedder_EmbedBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns one vector per input in order", func(t *testing.T) {
		t.Parallel()

		srv := embedServer(t, 4, nil)
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		vectors, err := e.EmbedBatch(context.Background(), []string{"a", "bbb", "cc"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)

		assert.Equal(t, float32(1), vectors[0][0])
		assert.Equal(t, float32(3), vectors[1][0])
		assert.Equal(t, float32(2), vectors[2][0])
	})

	t.Run("serves repeated texts from the cache", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		srv := embedServer(t, 4, &calls)
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		ctx := context.Background()
		first, err := e.EmbedBatch(ctx, []string{"hello", "world"})
		require.NoError(t, err)

		second, err := e.EmbedBatch(ctx, []string{"hello", "world"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), calls.Load(), "second batch should not hit the backend")
	})

	t.Run("only sends cache misses to the backend", func(t *testing.T) {
		t.Parallel()

		var sent []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			sent = req.Input

			embeddings := make([][]float32, len(req.Input))
			for i := range embeddings {
				embeddings[i] = []float32{1, 2, 3, 4}
			}
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings}))
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		ctx := context.Background()
		_, err = e.EmbedBatch(ctx, []string{"cached"})
		require.NoError(t, err)

		_, err = e.EmbedBatch(ctx, []string{"cached", "fresh"})
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh"}, sent)
	})

	t.Run("paces backend calls when a rate limit is set", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var hits []time.Time
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits = append(hits, time.Now())
			mu.Unlock()
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{1, 2, 3, 4}},
			}))
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:           srv.URL,
			RetryDelays:       fastRetries(),
			RequestsPerSecond: 20,
		})
		require.NoError(t, err)

		ctx := context.Background()
		_, err = e.EmbedBatch(ctx, []string{"first"})
		require.NoError(t, err)

		_, err = e.EmbedBatch(ctx, []string{"second"})
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, hits, 2)
		// At 20 req/s with burst 1 the second call waits ~50ms for a token.
		assert.GreaterOrEqual(t, hits[1].Sub(hits[0]), 35*time.Millisecond)
	})

	t.Run("retries transient backend failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				http.Error(w, "model loading", http.StatusInternalServerError)
				return
			}
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{1, 2, 3, 4}},
			}))
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		vectors, err := e.EmbedBatch(context.Background(), []string{"text"})
		require.NoError(t, err)
		require.Len(t, vectors, 1)
		assert.Equal(t, int64(3), calls.Load())
	})

	t.Run("returns EUNAVAILABLE once retries are exhausted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		_, err = e.EmbedBatch(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
	})

	t.Run("returns ECONFIG when the backend dimension differs", func(t *testing.T) {
		t.Parallel()

		srv := embedServer(t, 8, nil)
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		_, err = e.EmbedBatch(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.Equal(t, docdex.ECONFIG, docdex.ErrorCode(err))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{})
		require.NoError(t, err)

		_, err = e.EmbedBatch(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))

		_, err = e.EmbedBatch(context.Background(), []string{"ok", ""})
		require.Error(t, err)
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns the single vector", func(t *testing.T) {
		t.Parallel()

		srv := embedServer(t, 4, nil)
		defer srv.Close()

		e, err := ollama.NewEmbedder("nomic-embed-text", 4, ollama.Options{
			BaseURL:     srv.URL,
			RetryDelays: fastRetries(),
		})
		require.NoError(t, err)

		vector, err := e.Embed(context.Background(), "hello")
		require.NoError(t, err)
		require.Len(t, vector, 4)
		assert.Equal(t, float32(5), vector[0])
	})
}

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc := ollama.NewTokenCounter()
	ctx := context.Background()

	t.Run("estimates roughly one token per four characters", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(ctx, "twelve chars")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("short text counts at least one token", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(ctx, "ab")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
