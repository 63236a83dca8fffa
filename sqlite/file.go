package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/docdex/docdex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docdex.FileService = (*FileService)(nil)

// FileService implements docdex.FileService using SQLite. A file and its
// chunk set are always written in a single transaction, so a file row with a
// partial chunk set is never observable.
type FileService struct {
	db *DB

	// dim is the embedding dimension the store accepts. Writes with any
	// other vector length fail with ECONFIG.
	dim int
}

// NewFileService creates a new FileService accepting embeddings of the given
// dimension.
func NewFileService(db *DB, dim int) *FileService {
	return &FileService{db: db, dim: dim}
}

// CreateFileWithChunks creates a file row together with all of its chunks in
// one transaction.
func (s *FileService) CreateFileWithChunks(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error {
	if err := file.Validate(); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.insertFileWithChunks(ctx, tx, file, chunks)
	})
}

// ReplaceFileWithChunks deletes any existing row at the same
// (documentation, path) and recreates the file with the given chunk set, all
// in one transaction. Old chunks cascade with the old row.
func (s *FileService) ReplaceFileWithChunks(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error {
	if err := file.Validate(); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM files WHERE documentation_id = ? AND path = ?",
			file.DocumentationID, file.Path); err != nil {
			return err
		}
		return s.insertFileWithChunks(ctx, tx, file, chunks)
	})
}

func (s *FileService) insertFileWithChunks(ctx context.Context, tx *sql.Tx, file *docdex.File, chunks []*docdex.Chunk) error {
	// Validate every chunk before touching the database so the transaction
	// never holds partially validated rows.
	for i, chunk := range chunks {
		if chunk.Position != i {
			return docdex.Errorf(docdex.EINVALID, "chunk positions for %q must be contiguous from 0", file.Path)
		}
		if len(chunk.Embedding) != s.dim {
			return docdex.Errorf(docdex.ECONFIG,
				"embedding dimension mismatch for %q: got %d, store configured for %d",
				file.Path, len(chunk.Embedding), s.dim)
		}
	}

	file.ID = uuid.New().String()
	file.CreatedAt = time.Now().UTC()
	file.UpdatedAt = file.CreatedAt

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (id, documentation_id, path, hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, file.ID, file.DocumentationID, file.Path, file.Hash,
		file.CreatedAt.Format(time.RFC3339), file.UpdatedAt.Format(time.RFC3339)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return docdex.Errorf(docdex.ECONFLICT, "file %q already exists", file.Path)
		}
		return err
	}

	for _, chunk := range chunks {
		chunk.FileID = file.ID
		if err := chunk.Validate(); err != nil {
			return err
		}

		chunk.ID = uuid.New().String()
		chunk.CreatedAt = file.CreatedAt
		chunk.UpdatedAt = file.CreatedAt

		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, file_id, position, metadata, content, embedding, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, chunk.ID, chunk.FileID, chunk.Position, string(meta), chunk.Content,
			encodeVector(chunk.Embedding),
			chunk.CreatedAt.Format(time.RFC3339), chunk.UpdatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return nil
}

// FindFileByID retrieves a file by ID.
func (s *FileService) FindFileByID(ctx context.Context, id string) (*docdex.File, error) {
	var file docdex.File
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, documentation_id, path, hash, created_at, updated_at
		FROM files
		WHERE id = ?
	`, id).Scan(&file.ID, &file.DocumentationID, &file.Path, &file.Hash, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "file not found")
	}
	if err != nil {
		return nil, err
	}

	if file.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if file.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &file, nil
}

// FindFiles retrieves files matching the filter, ordered by path.
func (s *FileService) FindFiles(ctx context.Context, filter docdex.FileFilter) ([]*docdex.File, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, documentation_id, path, hash, created_at, updated_at FROM files WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.DocumentationID != nil {
		query.WriteString(" AND documentation_id = ?")
		args = append(args, *filter.DocumentationID)
	}
	if filter.Path != nil {
		query.WriteString(" AND path = ?")
		args = append(args, *filter.Path)
	}

	query.WriteString(" ORDER BY path ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*docdex.File
	for rows.Next() {
		var file docdex.File
		var createdAt, updatedAt string

		if err := rows.Scan(&file.ID, &file.DocumentationID, &file.Path, &file.Hash, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if file.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if file.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		files = append(files, &file)
	}

	return files, rows.Err()
}

// DeleteFile permanently removes a file; its chunks cascade.
func (s *FileService) DeleteFile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docdex.Errorf(docdex.ENOTFOUND, "file not found")
	}

	return nil
}
