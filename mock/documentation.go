// Package mock provides function-field mock implementations of docdex
// interfaces for testing.
package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.DocumentationService = (*DocumentationService)(nil)

// DocumentationService is a mock implementation of docdex.DocumentationService.
type DocumentationService struct {
	CreateDocumentationFn     func(ctx context.Context, doc *docdex.Documentation) error
	FindDocumentationByIDFn   func(ctx context.Context, id string) (*docdex.Documentation, error)
	FindDocumentationByNameFn func(ctx context.Context, name string) (*docdex.Documentation, error)
	FindDocumentationsFn      func(ctx context.Context, filter docdex.DocumentationFilter) ([]*docdex.Documentation, error)
	UpdateDocumentationFn     func(ctx context.Context, id string, upd docdex.DocumentationUpdate) (*docdex.Documentation, error)
	DeleteDocumentationFn     func(ctx context.Context, id string) error
}

func (s *DocumentationService) CreateDocumentation(ctx context.Context, doc *docdex.Documentation) error {
	return s.CreateDocumentationFn(ctx, doc)
}

func (s *DocumentationService) FindDocumentationByID(ctx context.Context, id string) (*docdex.Documentation, error) {
	return s.FindDocumentationByIDFn(ctx, id)
}

func (s *DocumentationService) FindDocumentationByName(ctx context.Context, name string) (*docdex.Documentation, error) {
	return s.FindDocumentationByNameFn(ctx, name)
}

func (s *DocumentationService) FindDocumentations(ctx context.Context, filter docdex.DocumentationFilter) ([]*docdex.Documentation, error) {
	return s.FindDocumentationsFn(ctx, filter)
}

func (s *DocumentationService) UpdateDocumentation(ctx context.Context, id string, upd docdex.DocumentationUpdate) (*docdex.Documentation, error) {
	return s.UpdateDocumentationFn(ctx, id, upd)
}

func (s *DocumentationService) DeleteDocumentation(ctx context.Context, id string) error {
	return s.DeleteDocumentationFn(ctx, id)
}
