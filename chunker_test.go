package docdex_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter counts whitespace-separated words, which makes chunk sizes easy
// to reason about in tests.
func wordCounter() *mock.TokenCounter {
	return &mock.TokenCounter{
		CountTokensFn: func(_ context.Context, text string) (int, error) {
			return len(strings.Fields(text)), nil
		},
	}
}

// nonBlankLines returns the trimmed non-empty lines of text, in order.
func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func TestChunker_Chunk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns no chunks for an empty document", func(t *testing.T) {
		t.Parallel()

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, "", "godocs", "readme.md")
		require.NoError(t, err)
		assert.Empty(t, drafts)

		drafts, err = chunker.Chunk(ctx, "\n\n   \n", "godocs", "readme.md")
		require.NoError(t, err)
		assert.Empty(t, drafts)
	})

	t.Run("produces one chunk for a short paragraph", func(t *testing.T) {
		t.Parallel()

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, "Just a short paragraph.", "godocs", "intro.md")
		require.NoError(t, err)
		require.Len(t, drafts, 1)

		assert.Equal(t, "Just a short paragraph.", drafts[0].Content)
		assert.Equal(t, "godocs", drafts[0].Metadata.Documentation)
		assert.Equal(t, "intro.md", drafts[0].Metadata.Path)
		assert.Equal(t, 0, drafts[0].Metadata.Position)
		assert.Equal(t, 1, drafts[0].Metadata.Total)
		assert.Empty(t, drafts[0].Metadata.Breadcrumb)
		assert.False(t, drafts[0].Metadata.Oversized)
	})

	t.Run("starts a new chunk at every heading", func(t *testing.T) {
		t.Parallel()

		markdown := `# Guide

Intro paragraph.

## Install

Install instructions.

## Usage

Usage instructions.`

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "guide.md")
		require.NoError(t, err)
		require.Len(t, drafts, 3)

		assert.Equal(t, "# Guide\n\nIntro paragraph.", drafts[0].Content)
		assert.Equal(t, "## Install\n\nInstall instructions.", drafts[1].Content)
		assert.Equal(t, "## Usage\n\nUsage instructions.", drafts[2].Content)
	})

	t.Run("tracks the heading breadcrumb per chunk", func(t *testing.T) {
		t.Parallel()

		markdown := `# Guide

## Install

From source.

### Requirements

A compiler.

## Usage

Run it.`

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "guide.md")
		require.NoError(t, err)
		require.Len(t, drafts, 4)

		assert.Equal(t, []string{"Guide"}, drafts[0].Metadata.Breadcrumb)
		assert.Equal(t, []string{"Guide", "Install"}, drafts[1].Metadata.Breadcrumb)
		assert.Equal(t, []string{"Guide", "Install", "Requirements"}, drafts[2].Metadata.Breadcrumb)
		// A sibling H2 pops both the H3 and the previous H2.
		assert.Equal(t, []string{"Guide", "Usage"}, drafts[3].Metadata.Breadcrumb)
	})

	t.Run("accumulates blocks up to the token limit", func(t *testing.T) {
		t.Parallel()

		markdown := "one two three four five six\n\n" +
			"seven eight nine ten eleven twelve\n\n" +
			"thirteen fourteen fifteen sixteen seventeen eighteen"

		t.Run("splits when the next block would exceed it", func(t *testing.T) {
			t.Parallel()

			chunker := docdex.NewChunker(wordCounter(), 10)

			drafts, err := chunker.Chunk(ctx, markdown, "godocs", "words.md")
			require.NoError(t, err)
			require.Len(t, drafts, 3)

			for _, d := range drafts {
				assert.LessOrEqual(t, len(strings.Fields(d.Content)), 10)
				assert.False(t, d.Metadata.Oversized)
			}
		})

		t.Run("keeps blocks together when they fit", func(t *testing.T) {
			t.Parallel()

			chunker := docdex.NewChunker(wordCounter(), 20)

			drafts, err := chunker.Chunk(ctx, markdown, "godocs", "words.md")
			require.NoError(t, err)
			require.Len(t, drafts, 1)
			assert.Len(t, strings.Fields(drafts[0].Content), 18)
		})
	})

	t.Run("flags an oversized atomic block instead of splitting it", func(t *testing.T) {
		t.Parallel()

		code := "```go\n" + strings.Repeat("x := compute(a, b, c)\n", 10) + "```"
		markdown := "Short intro.\n\n" + code + "\n\nShort outro."

		chunker := docdex.NewChunker(wordCounter(), 10)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "code.md")
		require.NoError(t, err)
		require.Len(t, drafts, 3)

		assert.Equal(t, "Short intro.", drafts[0].Content)
		assert.False(t, drafts[0].Metadata.Oversized)

		assert.Equal(t, code, drafts[1].Content)
		assert.True(t, drafts[1].Metadata.Oversized)

		assert.Equal(t, "Short outro.", drafts[2].Content)
		assert.False(t, drafts[2].Metadata.Oversized)
	})

	t.Run("flags a heading that alone exceeds the limit", func(t *testing.T) {
		t.Parallel()

		markdown := "# Alpha beta gamma delta epsilon\n\nShort text."

		chunker := docdex.NewChunker(wordCounter(), 4)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "long.md")
		require.NoError(t, err)
		require.Len(t, drafts, 2)

		assert.Equal(t, "# Alpha beta gamma delta epsilon", drafts[0].Content)
		assert.True(t, drafts[0].Metadata.Oversized)
		assert.Equal(t, []string{"Alpha beta gamma delta epsilon"}, drafts[0].Metadata.Breadcrumb)

		assert.Equal(t, "Short text.", drafts[1].Content)
		assert.False(t, drafts[1].Metadata.Oversized)
		assert.Equal(t, []string{"Alpha beta gamma delta epsilon"}, drafts[1].Metadata.Breadcrumb)
	})

	t.Run("does not treat heading-like lines inside code fences as headings", func(t *testing.T) {
		t.Parallel()

		markdown := "```sh\n# not a heading\nmake install\n```"

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "code.md")
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, markdown, drafts[0].Content)
		assert.Empty(t, drafts[0].Metadata.Breadcrumb)
	})

	t.Run("tolerates an unterminated code fence", func(t *testing.T) {
		t.Parallel()

		markdown := "Intro.\n\n```go\nfunc main() {}"

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "broken.md")
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Contains(t, drafts[0].Content, "func main() {}")
	})

	t.Run("keeps table rows in a single block", func(t *testing.T) {
		t.Parallel()

		table := "| Name | Value |\n|------|-------|\n| a | 1 |\n| b | 2 |"
		markdown := "Before.\n\n" + table + "\n\nAfter."

		chunker := docdex.NewChunker(wordCounter(), 100)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "table.md")
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Contains(t, drafts[0].Content, table)
	})

	t.Run("preserves every non-blank line across chunks", func(t *testing.T) {
		t.Parallel()

		markdown := `# API Reference

The client exposes three calls.

## Fetch

- fetch one record
- fetch many records
  with pagination

| Flag | Meaning |
|------|---------|
| -v | verbose |

` + "```go\nclient.Fetch(ctx, id)\n```" + `

## Store

Stores a record durably.`

		chunker := docdex.NewChunker(wordCounter(), 12)

		drafts, err := chunker.Chunk(ctx, markdown, "godocs", "api.md")
		require.NoError(t, err)
		require.NotEmpty(t, drafts)

		var joined strings.Builder
		for i, d := range drafts {
			assert.Equal(t, i, d.Metadata.Position)
			assert.Equal(t, len(drafts), d.Metadata.Total)
			joined.WriteString(d.Content)
			joined.WriteString("\n")
		}

		assert.Equal(t, nonBlankLines(markdown), nonBlankLines(joined.String()))
	})

	t.Run("propagates token counter errors", func(t *testing.T) {
		t.Parallel()

		countErr := errors.New("tokenizer unavailable")
		chunker := docdex.NewChunker(&mock.TokenCounter{
			CountTokensFn: func(_ context.Context, _ string) (int, error) {
				return 0, countErr
			},
		}, 100)

		_, err := chunker.Chunk(ctx, "Some text.", "godocs", "doc.md")
		assert.ErrorIs(t, err, countErr)
	})
}

func TestEmbeddingInput(t *testing.T) {
	t.Parallel()

	t.Run("prefixes content with a metadata header", func(t *testing.T) {
		t.Parallel()

		input := docdex.EmbeddingInput(docdex.ChunkMetadata{
			Documentation: "godocs",
			Path:          "guide.md",
			Breadcrumb:    []string{"Guide", "Install"},
			Position:      1,
			Total:         3,
		}, "Install instructions.")

		assert.Equal(t,
			"documentation: godocs\npath: guide.md\nsection: Guide > Install\nchunk: 2/3\n---\nInstall instructions.",
			input)
	})

	t.Run("omits the section line without a breadcrumb", func(t *testing.T) {
		t.Parallel()

		input := docdex.EmbeddingInput(docdex.ChunkMetadata{
			Documentation: "godocs",
			Path:          "readme.md",
			Total:         1,
		}, "Hello.")

		assert.Equal(t, "documentation: godocs\npath: readme.md\nchunk: 1/1\n---\nHello.", input)
	})
}
