package docdex

import (
	"context"
	"time"
)

// Documentation represents a tracked documentation source: a git repository
// (optionally narrowed to a subdirectory) at a branch, under a user-chosen
// unique name.
type Documentation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RepoURL   string    `json:"repoUrl"`
	Subdir    string    `json:"subdir"`
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the documentation contains invalid fields.
func (d *Documentation) Validate() error {
	if d.Name == "" {
		return Errorf(EINVALID, "documentation name required")
	}
	if d.RepoURL == "" {
		return Errorf(EINVALID, "documentation repository URL required")
	}
	return nil
}

// DocumentationService represents a service for managing documentation sources.
type DocumentationService interface {
	// CreateDocumentation creates a new documentation source.
	// Returns ECONFLICT if the name is already taken.
	CreateDocumentation(ctx context.Context, doc *Documentation) error

	// FindDocumentationByID retrieves a documentation source by ID.
	// Returns ENOTFOUND if it does not exist.
	FindDocumentationByID(ctx context.Context, id string) (*Documentation, error)

	// FindDocumentationByName retrieves a documentation source by its unique name.
	// Returns ENOTFOUND if it does not exist.
	FindDocumentationByName(ctx context.Context, name string) (*Documentation, error)

	// FindDocumentations retrieves documentation sources matching the filter.
	FindDocumentations(ctx context.Context, filter DocumentationFilter) ([]*Documentation, error)

	// UpdateDocumentation updates an existing documentation source.
	// Returns ENOTFOUND if it does not exist.
	UpdateDocumentation(ctx context.Context, id string, upd DocumentationUpdate) (*Documentation, error)

	// DeleteDocumentation permanently removes a documentation source and all
	// associated files and chunks.
	// Returns ENOTFOUND if it does not exist.
	DeleteDocumentation(ctx context.Context, id string) error
}

// DocumentationFilter represents a filter for FindDocumentations.
type DocumentationFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DocumentationUpdate represents fields that can be updated on a
// documentation source. Nil fields are left unchanged.
type DocumentationUpdate struct {
	RepoURL *string `json:"repoUrl"`
	Subdir  *string `json:"subdir"`
	Branch  *string `json:"branch"`
}
