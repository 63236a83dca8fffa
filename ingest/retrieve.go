package ingest

import (
	"context"

	"github.com/docdex/docdex"
)

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// K is the maximum number of results. Zero returns an empty result set.
	K int

	// Documentation optionally scopes the search to one documentation by
	// name; empty searches the whole corpus.
	Documentation string
}

// RetrieveResult is one ranked retrieval match.
type RetrieveResult struct {
	Metadata docdex.ChunkMetadata `json:"metadata"`
	Content  string               `json:"content"`
	Distance float64              `json:"distance"`
}

// Retriever answers semantic queries against the corpus: it embeds the
// prompt and maps the store's nearest-chunk ranking to results, preserving
// order. Retrieval is read-only and safe to run concurrently.
type Retriever struct {
	Documentations docdex.DocumentationService
	Chunks         docdex.ChunkService
	Embedder       docdex.Embedder
}

// Retrieve returns the K chunks most semantically similar to prompt,
// ascending by distance.
func (r *Retriever) Retrieve(ctx context.Context, prompt string, opts RetrieveOptions) ([]RetrieveResult, error) {
	if prompt == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "prompt required")
	}
	if opts.K < 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "k must not be negative")
	}
	if opts.K == 0 {
		return []RetrieveResult{}, nil
	}

	var docID string
	if opts.Documentation != "" {
		doc, err := r.Documentations.FindDocumentationByName(ctx, opts.Documentation)
		if err != nil {
			return nil, err
		}
		docID = doc.ID
	}

	vector, err := r.Embedder.Embed(ctx, prompt)
	if err != nil {
		return nil, err
	}

	matches, err := r.Chunks.NearestChunks(ctx, vector, opts.K, docID)
	if err != nil {
		return nil, err
	}

	results := make([]RetrieveResult, len(matches))
	for i, m := range matches {
		results[i] = RetrieveResult{
			Metadata: m.Chunk.Metadata,
			Content:  m.Chunk.Content,
			Distance: m.Distance,
		}
	}
	return results, nil
}
