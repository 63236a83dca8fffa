package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/docdex/docdex"
	main "github.com/docdex/docdex/cmd/docdex"
	"github.com/docdex/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists documentations with file and chunk counts", func(t *testing.T) {
		t.Parallel()

		docs := &mock.DocumentationService{
			FindDocumentationsFn: func(_ context.Context, _ docdex.DocumentationFilter) ([]*docdex.Documentation, error) {
				return []*docdex.Documentation{
					{ID: "doc-1", Name: "godocs", RepoURL: "https://example.com/godocs.git", Branch: "main"},
					{ID: "doc-2", Name: "rustdocs", RepoURL: "https://example.com/rustdocs.git", Branch: "master", Subdir: "book"},
				}, nil
			},
		}
		files := &mock.FileService{
			FindFilesFn: func(_ context.Context, filter docdex.FileFilter) ([]*docdex.File, error) {
				require.NotNil(t, filter.DocumentationID)
				if *filter.DocumentationID == "doc-1" {
					return []*docdex.File{{ID: "f1"}, {ID: "f2"}}, nil
				}
				return nil, nil
			},
		}
		chunks := &mock.ChunkService{
			FindChunksFn: func(_ context.Context, filter docdex.ChunkFilter) ([]*docdex.Chunk, error) {
				require.NotNil(t, filter.DocumentationID)
				if *filter.DocumentationID == "doc-1" {
					return []*docdex.Chunk{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}, nil
				}
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:            context.Background(),
			Stdout:         stdout,
			Stderr:         &bytes.Buffer{},
			Documentations: docs,
			Files:          files,
			Chunks:         chunks,
		}

		err := (&main.ListCmd{}).Run(deps)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "godocs")
		assert.Contains(t, output, "https://example.com/godocs.git")
		assert.Contains(t, output, "2 files, 3 chunks")
		assert.Contains(t, output, "rustdocs")
		assert.Contains(t, output, "master/book")
		assert.Contains(t, output, "0 files, 0 chunks")
	})

	t.Run("shows a helpful message when nothing is tracked", func(t *testing.T) {
		t.Parallel()

		docs := &mock.DocumentationService{
			FindDocumentationsFn: func(_ context.Context, _ docdex.DocumentationFilter) ([]*docdex.Documentation, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:            context.Background(),
			Stdout:         stdout,
			Stderr:         &bytes.Buffer{},
			Documentations: docs,
		}

		err := (&main.ListCmd{}).Run(deps)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No documentation sources")
	})

	t.Run("returns the error when the store fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database locked")
		docs := &mock.DocumentationService{
			FindDocumentationsFn: func(_ context.Context, _ docdex.DocumentationFilter) ([]*docdex.Documentation, error) {
				return nil, dbErr
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:            context.Background(),
			Stdout:         &bytes.Buffer{},
			Stderr:         stderr,
			Documentations: docs,
		}

		err := (&main.ListCmd{}).Run(deps)
		require.ErrorIs(t, err, dbErr)
		assert.Contains(t, stderr.String(), "error:")
	})
}
