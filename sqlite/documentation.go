package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/docdex/docdex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docdex.DocumentationService = (*DocumentationService)(nil)

// DocumentationService implements docdex.DocumentationService using SQLite.
type DocumentationService struct {
	db *DB
}

// NewDocumentationService creates a new DocumentationService.
func NewDocumentationService(db *DB) *DocumentationService {
	return &DocumentationService{db: db}
}

// CreateDocumentation creates a new documentation source.
func (s *DocumentationService) CreateDocumentation(ctx context.Context, doc *docdex.Documentation) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	doc.ID = uuid.New().String()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Branch == "" {
		doc.Branch = "main"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documentations (id, name, repo_url, subdir, branch, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Name, doc.RepoURL, doc.Subdir, doc.Branch,
		doc.CreatedAt.Format(time.RFC3339), doc.UpdatedAt.Format(time.RFC3339))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return docdex.Errorf(docdex.ECONFLICT, "documentation %q already exists", doc.Name)
	}
	return err
}

// FindDocumentationByID retrieves a documentation source by ID.
func (s *DocumentationService) FindDocumentationByID(ctx context.Context, id string) (*docdex.Documentation, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindDocumentationByName retrieves a documentation source by its unique name.
func (s *DocumentationService) FindDocumentationByName(ctx context.Context, name string) (*docdex.Documentation, error) {
	return s.findOne(ctx, "name = ?", name)
}

func (s *DocumentationService) findOne(ctx context.Context, where string, arg any) (*docdex.Documentation, error) {
	var doc docdex.Documentation
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, repo_url, subdir, branch, created_at, updated_at
		FROM documentations
		WHERE `+where,
		arg).Scan(&doc.ID, &doc.Name, &doc.RepoURL, &doc.Subdir, &doc.Branch, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "documentation not found")
	}
	if err != nil {
		return nil, err
	}

	if doc.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &doc, nil
}

// FindDocumentations retrieves documentation sources matching the filter.
func (s *DocumentationService) FindDocumentations(ctx context.Context, filter docdex.DocumentationFilter) ([]*docdex.Documentation, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, repo_url, subdir, branch, created_at, updated_at FROM documentations WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY name ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*docdex.Documentation
	for rows.Next() {
		var doc docdex.Documentation
		var createdAt, updatedAt string

		if err := rows.Scan(&doc.ID, &doc.Name, &doc.RepoURL, &doc.Subdir, &doc.Branch, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if doc.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if doc.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// UpdateDocumentation merges the provided fields into an existing
// documentation source.
func (s *DocumentationService) UpdateDocumentation(ctx context.Context, id string, upd docdex.DocumentationUpdate) (*docdex.Documentation, error) {
	doc, err := s.FindDocumentationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.RepoURL != nil {
		doc.RepoURL = *upd.RepoURL
	}
	if upd.Subdir != nil {
		doc.Subdir = *upd.Subdir
	}
	if upd.Branch != nil {
		doc.Branch = *upd.Branch
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE documentations
		SET repo_url = ?, subdir = ?, branch = ?, updated_at = ?
		WHERE id = ?
	`, doc.RepoURL, doc.Subdir, doc.Branch, doc.UpdatedAt.Format(time.RFC3339), id)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// DeleteDocumentation permanently removes a documentation source. Files and
// chunks go with it via foreign key cascade.
func (s *DocumentationService) DeleteDocumentation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documentations WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docdex.Errorf(docdex.ENOTFOUND, "documentation not found")
	}

	return nil
}
