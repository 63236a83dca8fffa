package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.ChunkService = (*ChunkService)(nil)

// ChunkService implements docdex.ChunkService using SQLite. Nearest-neighbor
// queries are a brute-force cosine scan over stored embeddings, which is
// adequate for single-machine documentation corpora.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

const chunkColumns = "id, file_id, position, metadata, content, embedding, created_at, updated_at"

func scanChunk(scan func(dest ...any) error) (*docdex.Chunk, error) {
	var chunk docdex.Chunk
	var meta string
	var embedding []byte
	var createdAt, updatedAt string

	if err := scan(&chunk.ID, &chunk.FileID, &chunk.Position, &meta, &chunk.Content,
		&embedding, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(meta), &chunk.Metadata); err != nil {
		return nil, err
	}
	chunk.Embedding = decodeVector(embedding)

	var err error
	if chunk.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if chunk.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &chunk, nil
}

// FindChunkByID retrieves a chunk by ID.
func (s *ChunkService) FindChunkByID(ctx context.Context, id string) (*docdex.Chunk, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)

	chunk, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "chunk not found")
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// FindChunks retrieves chunks matching the filter, ordered by file then
// position so concatenating contents reconstructs file order.
func (s *ChunkService) FindChunks(ctx context.Context, filter docdex.ChunkFilter) ([]*docdex.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT c.id, c.file_id, c.position, c.metadata, c.content, c.embedding, c.created_at, c.updated_at FROM chunks c")

	if filter.DocumentationID != nil {
		query.WriteString(" JOIN files f ON f.id = c.file_id")
	}
	query.WriteString(" WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND c.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.FileID != nil {
		query.WriteString(" AND c.file_id = ?")
		args = append(args, *filter.FileID)
	}
	if filter.DocumentationID != nil {
		query.WriteString(" AND f.documentation_id = ?")
		args = append(args, *filter.DocumentationID)
	}

	query.WriteString(" ORDER BY c.file_id ASC, c.position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*docdex.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// NearestChunks returns the k chunks closest to the query vector under
// cosine distance, ascending, ties broken by ascending chunk ID so results
// are deterministic.
func (s *ChunkService) NearestChunks(ctx context.Context, query []float32, k int, documentationID string) ([]docdex.ChunkMatch, error) {
	if k < 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "k must not be negative")
	}
	if k == 0 {
		return []docdex.ChunkMatch{}, nil
	}
	if len(query) == 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "query vector required")
	}

	var sb strings.Builder
	var args []any
	sb.WriteString("SELECT c.id, c.file_id, c.position, c.metadata, c.content, c.embedding, c.created_at, c.updated_at FROM chunks c")
	if documentationID != "" {
		sb.WriteString(" JOIN files f ON f.id = c.file_id WHERE f.documentation_id = ?")
		args = append(args, documentationID)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []docdex.ChunkMatch
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		if len(chunk.Embedding) != len(query) {
			return nil, docdex.Errorf(docdex.ECONFIG,
				"embedding dimension mismatch: stored %d, query %d", len(chunk.Embedding), len(query))
		}
		matches = append(matches, docdex.ChunkMatch{
			Chunk:    chunk,
			Distance: cosineDistance(query, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Chunk.ID < matches[j].Chunk.ID
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}
