package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of docdex.ChunkService.
type ChunkService struct {
	FindChunkByIDFn func(ctx context.Context, id string) (*docdex.Chunk, error)
	FindChunksFn    func(ctx context.Context, filter docdex.ChunkFilter) ([]*docdex.Chunk, error)
	NearestChunksFn func(ctx context.Context, query []float32, k int, documentationID string) ([]docdex.ChunkMatch, error)
}

func (s *ChunkService) FindChunkByID(ctx context.Context, id string) (*docdex.Chunk, error) {
	return s.FindChunkByIDFn(ctx, id)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter docdex.ChunkFilter) ([]*docdex.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) NearestChunks(ctx context.Context, query []float32, k int, documentationID string) ([]docdex.ChunkMatch, error) {
	return s.NearestChunksFn(ctx, query, k, documentationID)
}
