package docdex

import (
	"context"
	"regexp"
	"strings"
)

// ChunkDraft is a chunk produced by the Chunker before persistence: content
// plus metadata, with no ID or embedding yet.
type ChunkDraft struct {
	Content  string
	Metadata ChunkMetadata
}

// Chunker splits a markdown document into an ordered sequence of chunk
// drafts. Every produced chunk stays within TokenLimit except a chunk holding
// a single atomic block (e.g. one oversized code block) that alone exceeds
// the limit; such chunks are flagged Oversized in metadata rather than split
// mid-block.
//
// The document is parsed into a flat sequence of structural blocks (heading,
// paragraph, fenced code, table, list item). Consecutive blocks accumulate
// into the current chunk while the running token count stays under the limit;
// a new chunk starts at every heading and whenever accumulation would exceed
// the limit. Blocks are never split. Unparsable spans are treated as opaque
// paragraphs, so malformed markdown never aborts chunking.
type Chunker struct {
	Tokens     TokenCounter
	TokenLimit int
}

// NewChunker creates a Chunker with the given token counter and limit.
func NewChunker(tokens TokenCounter, limit int) *Chunker {
	return &Chunker{Tokens: tokens, TokenLimit: limit}
}

// Chunk splits text into chunk drafts carrying documentation name, file path,
// heading breadcrumb, and position/total metadata. Empty documents yield zero
// chunks. Token counts are computed once per block and summed, so chunking is
// deterministic for a given counter.
func (c *Chunker) Chunk(ctx context.Context, text, documentation, path string) ([]ChunkDraft, error) {
	blocks := parseBlocks(text)
	if len(blocks) == 0 {
		return nil, nil
	}

	var (
		drafts  []ChunkDraft
		crumbs  breadcrumb
		current []block
		tokens  int
		crumb   []string // breadcrumb snapshot at current chunk's start
	)

	flush := func(oversized bool) {
		if len(current) == 0 {
			return
		}
		parts := make([]string, len(current))
		for i, b := range current {
			parts[i] = b.text
		}
		drafts = append(drafts, ChunkDraft{
			Content: strings.Join(parts, "\n\n"),
			Metadata: ChunkMetadata{
				Documentation: documentation,
				Path:          path,
				Breadcrumb:    crumb,
				Oversized:     oversized,
			},
		})
		current = nil
		tokens = 0
	}

	for _, b := range blocks {
		bt, err := c.Tokens.CountTokens(ctx, b.text)
		if err != nil {
			return nil, err
		}

		if b.kind == blockHeading {
			// Headings always open a new chunk so a heading-level change is
			// never hidden mid-chunk.
			flush(false)
			crumbs.apply(b.level, b.title)
			crumb = crumbs.titles()
			current = append(current, b)
			tokens = bt
			if bt > c.TokenLimit {
				// A heading alone over the limit is atomic like any other
				// block: emit it flagged rather than unbounded.
				flush(true)
			}
			continue
		}

		if len(current) == 0 {
			crumb = crumbs.titles()
		}

		if bt > c.TokenLimit {
			// Atomic block over the limit: emit alone, flagged.
			flush(false)
			crumb = crumbs.titles()
			current = []block{b}
			flush(true)
			continue
		}

		if tokens+bt > c.TokenLimit {
			flush(false)
			crumb = crumbs.titles()
		}
		current = append(current, b)
		tokens += bt
	}
	flush(false)

	// Second pass: positions and totals are only known once segmentation is
	// complete.
	for i := range drafts {
		drafts[i].Metadata.Position = i
		drafts[i].Metadata.Total = len(drafts)
	}

	return drafts, nil
}

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockCode
	blockTable
	blockListItem
)

type block struct {
	kind  blockKind
	text  string
	level int    // heading level, 1-6
	title string // heading title
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

// parseBlocks scans markdown line by line into a flat block sequence.
// Blank lines delimit blocks but are not blocks themselves.
func parseBlocks(text string) []block {
	lines := strings.Split(text, "\n")
	var blocks []block

	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case isFence(trimmed):
			// Fenced code runs to the matching fence, or to EOF when the
			// fence is unterminated.
			fence := trimmed[:3]
			j := i + 1
			for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), fence) {
				j++
			}
			if j < len(lines) {
				j++ // include closing fence
			}
			blocks = append(blocks, block{kind: blockCode, text: strings.Join(lines[i:j], "\n")})
			i = j

		case headingRe.MatchString(trimmed):
			m := headingRe.FindStringSubmatch(trimmed)
			blocks = append(blocks, block{
				kind:  blockHeading,
				text:  trimmed,
				level: len(m[1]),
				title: m[2],
			})
			i++

		case strings.HasPrefix(trimmed, "|"):
			j := i
			for j < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j]), "|") {
				j++
			}
			blocks = append(blocks, block{kind: blockTable, text: strings.Join(lines[i:j], "\n")})
			i = j

		case isListItem(trimmed):
			// A list item carries its indented continuation lines.
			j := i + 1
			for j < len(lines) {
				next := strings.TrimSpace(lines[j])
				if next == "" || isListItem(next) || isFence(next) || headingRe.MatchString(next) {
					break
				}
				if !strings.HasPrefix(lines[j], " ") && !strings.HasPrefix(lines[j], "\t") {
					break
				}
				j++
			}
			blocks = append(blocks, block{kind: blockListItem, text: strings.Join(lines[i:j], "\n")})
			i = j

		default:
			// Paragraph: consecutive plain lines until a blank or another
			// block opener. Anything unrecognized lands here unchanged.
			j := i + 1
			for j < len(lines) {
				next := strings.TrimSpace(lines[j])
				if next == "" || isFence(next) || headingRe.MatchString(next) ||
					strings.HasPrefix(next, "|") || isListItem(next) {
					break
				}
				j++
			}
			blocks = append(blocks, block{kind: blockParagraph, text: strings.Join(lines[i:j], "\n")})
			i = j
		}
	}

	return blocks
}

func isFence(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

var listItemRe = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s+`)

func isListItem(trimmed string) bool {
	return listItemRe.MatchString(trimmed)
}

// breadcrumb maintains the stack of ancestor headings, keyed by level. It is
// updated as headings are encountered, independent of chunk boundaries.
type breadcrumb struct {
	stack []struct {
		level int
		title string
	}
}

// apply records a heading: entries at the same or deeper level are popped,
// then the heading is pushed.
func (b *breadcrumb) apply(level int, title string) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	b.stack = append(b.stack, struct {
		level int
		title string
	}{level, title})
}

// titles returns a copy of the active heading titles, outermost first.
func (b *breadcrumb) titles() []string {
	if len(b.stack) == 0 {
		return nil
	}
	out := make([]string, len(b.stack))
	for i, e := range b.stack {
		out[i] = e.title
	}
	return out
}
