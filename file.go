package docdex

import (
	"context"
	"time"
)

// File represents one markdown file belonging to a documentation source.
// The (DocumentationID, Path) pair is unique; Path is the file's stable
// identifier within its documentation.
//
// Files are never updated in place: when a file's content changes upstream,
// the row is deleted and recreated together with a fresh chunk set so chunk
// positions stay consistent.
type File struct {
	ID              string    `json:"id"`
	DocumentationID string    `json:"documentationId"`
	Path            string    `json:"path"`
	Hash            string    `json:"hash"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate returns an error if the file contains invalid fields.
func (f *File) Validate() error {
	if f.DocumentationID == "" {
		return Errorf(EINVALID, "file documentation ID required")
	}
	if f.Path == "" {
		return Errorf(EINVALID, "file path required")
	}
	if f.Hash == "" {
		return Errorf(EINVALID, "file content hash required")
	}
	return nil
}

// FileService represents a service for managing files and their chunk sets.
type FileService interface {
	// CreateFileWithChunks creates a file row together with all of its chunks
	// in a single transaction. Either every row becomes visible or none do.
	// Chunk embeddings must all have the dimension the store was configured
	// with; a mismatch returns ECONFIG.
	CreateFileWithChunks(ctx context.Context, file *File, chunks []*Chunk) error

	// ReplaceFileWithChunks deletes any existing file row at the same
	// (documentation, path), cascading its chunks, and recreates the file with
	// the given chunk set. The delete and recreate happen in one transaction.
	ReplaceFileWithChunks(ctx context.Context, file *File, chunks []*Chunk) error

	// FindFileByID retrieves a file by ID.
	// Returns ENOTFOUND if the file does not exist.
	FindFileByID(ctx context.Context, id string) (*File, error)

	// FindFiles retrieves files matching the filter, ordered by path.
	FindFiles(ctx context.Context, filter FileFilter) ([]*File, error)

	// DeleteFile permanently removes a file and its chunks.
	// Returns ENOTFOUND if the file does not exist.
	DeleteFile(ctx context.Context, id string) error
}

// FileFilter represents a filter for FindFiles.
type FileFilter struct {
	ID              *string `json:"id"`
	DocumentationID *string `json:"documentationId"`
	Path            *string `json:"path"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
