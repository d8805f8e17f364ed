package services

import (
	"strings"

	"github.com/google/uuid"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/models"
)

// separator priority: paragraph, line, sentence, word.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// PageSource is one page of extracted text positioned within the
// concatenated document.
type PageSource struct {
	Filename   string
	PageNumber int
	Text       string
	Offset     int // char offset of Text within the whole document
}

// HybridChunker splits page text into overlapping chunks. Pages never
// span chunks; within a page the split prefers paragraph boundaries,
// then lines, then sentences, then words.
type HybridChunker struct {
	size     int
	overlap  int
	minChars int // minimum non-whitespace chars for a standalone chunk
}

func NewHybridChunker(cfg *config.Config) *HybridChunker {
	return &HybridChunker{
		size:     cfg.ChunkSize,
		overlap:  cfg.ChunkOverlap,
		minChars: cfg.MinChunkChars,
	}
}

// ChunkPages chunks every page and assigns document-wide chunk indexes.
// Pages with no non-whitespace text produce no chunks.
func (c *HybridChunker) ChunkPages(pages []PageSource) []models.Chunk {
	var chunks []models.Chunk
	index := 0

	for _, page := range pages {
		for _, sp := range c.splitText(page.Text) {
			text := page.Text[sp.start:sp.end]
			if NonWhitespaceLen(text) == 0 {
				continue
			}
			chunks = append(chunks, models.Chunk{
				ChunkID:    uuid.NewString(),
				Text:       text,
				Filename:   page.Filename,
				PageNumber: page.PageNumber,
				ChunkIndex: index,
				CharStart:  page.Offset + sp.start,
				CharEnd:    page.Offset + sp.end,
			})
			index++
		}
	}
	return chunks
}

type span struct {
	start, end int
}

func (c *HybridChunker) splitText(text string) []span {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= c.size {
		return []span{{0, len(text)}}
	}

	var spans []span
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		// A tail that would add fewer than minChars beyond the overlap
		// is folded into the current chunk instead of standing alone.
		if end < len(text) && NonWhitespaceLen(text[end:]) < c.minChars {
			end = len(text)
		}

		spans = append(spans, span{start, end})
		if end >= len(text) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return spans
}

// breakPoint finds the cut position closest to the target end, trying
// separators in priority order within the back half of the window. A
// window with no separator at all is cut hard at the target.
func (c *HybridChunker) breakPoint(text string, start, end int) int {
	lo := start + c.size/2
	if lo >= end {
		lo = start + 1
	}
	window := text[lo:end]
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return lo + idx + len(sep)
		}
	}
	return end
}
