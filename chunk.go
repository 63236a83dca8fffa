package docdex

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Chunk represents a bounded, structurally coherent span of a markdown file
// plus its embedding vector. Chunks are immutable once created; any content
// change is expressed as delete-all-chunks-for-file followed by re-creation.
type Chunk struct {
	ID        string        `json:"id"`
	FileID    string        `json:"fileId"`
	Position  int           `json:"position"` // 0-based, contiguous per file
	Metadata  ChunkMetadata `json:"metadata"`
	Content   string        `json:"content"`
	Embedding []float32     `json:"embedding,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ChunkMetadata contains contextual information about a chunk. It is embedded
// together with the content so retrieval is biased toward contextually
// relevant chunks rather than pure lexical overlap.
type ChunkMetadata struct {
	// Documentation is the owning documentation source's name.
	Documentation string `json:"documentation"`

	// Path is the file's relative path within the documentation source.
	Path string `json:"path"`

	// Breadcrumb is the stack of ancestor heading titles active at the
	// chunk's start.
	Breadcrumb []string `json:"breadcrumb,omitempty"`

	// Position and Total locate the chunk within its file's sequence.
	Position int `json:"position"`
	Total    int `json:"total"`

	// Oversized marks a chunk holding a single atomic block that alone
	// exceeds the token limit. This is the one permitted limit violation.
	Oversized bool `json:"oversized,omitempty"`
}

// EmbeddingInput returns the text actually sent to the embedding backend for
// a chunk: a serialized metadata header and the raw content, separated by a
// fixed delimiter.
func EmbeddingInput(meta ChunkMetadata, content string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "documentation: %s\n", meta.Documentation)
	fmt.Fprintf(&sb, "path: %s\n", meta.Path)
	if len(meta.Breadcrumb) > 0 {
		fmt.Fprintf(&sb, "section: %s\n", strings.Join(meta.Breadcrumb, " > "))
	}
	fmt.Fprintf(&sb, "chunk: %d/%d\n", meta.Position+1, meta.Total)
	sb.WriteString("---\n")
	sb.WriteString(content)
	return sb.String()
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.FileID == "" {
		return Errorf(EINVALID, "chunk file ID required")
	}
	if c.Position < 0 {
		return Errorf(EINVALID, "chunk position must not be negative")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk embedding required")
	}
	return nil
}

// ChunkMatch is a chunk returned from a nearest-neighbor query together with
// its cosine distance from the query vector (lower is closer).
type ChunkMatch struct {
	Chunk    *Chunk  `json:"chunk"`
	Distance float64 `json:"distance"`
}

// ChunkService represents a service for reading chunks and performing
// nearest-neighbor queries. Chunk writes only happen through FileService as
// part of a file's transactional ingest.
type ChunkService interface {
	// FindChunkByID retrieves a chunk by ID.
	// Returns ENOTFOUND if the chunk does not exist.
	FindChunkByID(ctx context.Context, id string) (*Chunk, error)

	// FindChunks retrieves chunks matching the filter, ordered by file and
	// position.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// NearestChunks returns the k stored chunks closest to the query vector
	// under cosine distance, ascending, ties broken by ascending chunk ID.
	// A non-empty documentationID scopes the search to one documentation.
	// k == 0 returns an empty slice.
	NearestChunks(ctx context.Context, query []float32, k int, documentationID string) ([]ChunkMatch, error)
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	ID              *string `json:"id"`
	FileID          *string `json:"fileId"`
	DocumentationID *string `json:"documentationId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
