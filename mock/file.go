package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.FileService = (*FileService)(nil)

// FileService is a mock implementation of docdex.FileService.
type FileService struct {
	CreateFileWithChunksFn  func(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error
	ReplaceFileWithChunksFn func(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error
	FindFileByIDFn          func(ctx context.Context, id string) (*docdex.File, error)
	FindFilesFn             func(ctx context.Context, filter docdex.FileFilter) ([]*docdex.File, error)
	DeleteFileFn            func(ctx context.Context, id string) error
}

func (s *FileService) CreateFileWithChunks(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error {
	return s.CreateFileWithChunksFn(ctx, file, chunks)
}

func (s *FileService) ReplaceFileWithChunks(ctx context.Context, file *docdex.File, chunks []*docdex.Chunk) error {
	return s.ReplaceFileWithChunksFn(ctx, file, chunks)
}

func (s *FileService) FindFileByID(ctx context.Context, id string) (*docdex.File, error) {
	return s.FindFileByIDFn(ctx, id)
}

func (s *FileService) FindFiles(ctx context.Context, filter docdex.FileFilter) ([]*docdex.File, error) {
	return s.FindFilesFn(ctx, filter)
}

func (s *FileService) DeleteFile(ctx context.Context, id string) error {
	return s.DeleteFileFn(ctx, id)
}
