package rag

import (
	"fmt"
	"strings"

	"docnav/internal/models"
)

// AssembledContext is the bounded prompt context plus its citations.
type AssembledContext struct {
	Text       string
	Sources    []string
	ChunksUsed int
}

// AssembleContext concatenates chunk texts in descending-score order,
// keeping the total within maxChars. Chunks that no longer fit are
// dropped from the low-scoring end. Repeated chunks from the same
// document are deduplicated; sources keep first-seen order.
func AssembleContext(results []models.ScoredChunk, maxChars int) AssembledContext {
	var parts []string
	var sources []string
	seenChunk := make(map[string]bool)
	seenSource := make(map[string]bool)

	total := 0
	used := 0
	for _, r := range results {
		key := r.Chunk.DocumentID + "\x00" + r.Chunk.Text
		if seenChunk[r.Chunk.ChunkID] || seenChunk[key] {
			continue
		}

		fragment := fmt.Sprintf("[Fragment %d]:\n%s\n", used+1, r.Chunk.Text)
		if total+len(fragment) > maxChars {
			// everything after this scores lower, so stop here
			break
		}
		seenChunk[r.Chunk.ChunkID] = true
		seenChunk[key] = true

		parts = append(parts, fragment)
		total += len(fragment)
		used++

		if !seenSource[r.Chunk.DocumentID] {
			seenSource[r.Chunk.DocumentID] = true
			sources = append(sources, r.Chunk.DocumentID)
		}
	}

	return AssembledContext{
		Text:       strings.Join(parts, models.FragmentSeparator),
		Sources:    sources,
		ChunksUsed: used,
	}
}
