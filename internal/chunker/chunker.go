package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"docnav/internal/models"
)

// separators in order of preference: paragraph, line, sentence, word.
// A hard character cut is the fallback when none appears in the window.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits document text into overlapping fixed-size segments.
type Chunker struct {
	size    int
	overlap int
}

// New validates the chunking parameters once, at startup.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be in [0, chunk size %d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split cuts the document into chunks of at most the configured size, with
// the configured number of characters shared between consecutive chunks.
// Documents no longer than one chunk come back whole.
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	text := doc.Text
	if len(text) == 0 {
		return nil
	}
	if len(text) <= c.size {
		return []models.Chunk{c.chunk(doc.ID, 0, text, 0)}
	}

	var chunks []models.Chunk
	start := 0
	idx := 0
	for {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}
		chunks = append(chunks, c.chunk(doc.ID, idx, text[start:end], start))
		idx++
		if end >= len(text) {
			break
		}
		start = end - c.overlap
	}
	return chunks
}

func (c *Chunker) chunk(docID string, idx int, text string, offset int) models.Chunk {
	return models.Chunk{
		ChunkID:     docID + ":" + strconv.Itoa(idx),
		DocumentID:  docID,
		Text:        text,
		StartOffset: offset,
	}
}

// breakPoint moves the cut back to the best separator in the window. The
// cut must land after start+overlap so the next chunk always advances.
func (c *Chunker) breakPoint(text string, start, end int) int {
	floor := start + c.overlap + 1
	if floor >= end {
		return end
	}
	for _, sep := range separators {
		if i := strings.LastIndex(text[floor:end], sep); i >= 0 {
			return floor + i + len(sep)
		}
	}
	return end
}
