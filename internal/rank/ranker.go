package rank

import (
	"context"
	"sort"

	"docnav/internal/index"
	"docnav/internal/models"
)

// Ranker selects the top-k stored chunks for a query vector. Pluggable so
// the full-scan default can be swapped for an indexed backend without
// touching the orchestrator.
type Ranker interface {
	Rank(ctx context.Context, queryVec []float32, art *index.Artifact, k int) ([]models.ScoredChunk, error)
}

// Linear scores every stored chunk with cosine similarity. A full scan is
// a deliberate simplicity-over-scale tradeoff at the target corpus size.
type Linear struct{}

func NewLinear() *Linear { return &Linear{} }

func (Linear) Rank(ctx context.Context, queryVec []float32, art *index.Artifact, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	scored := make([]models.ScoredChunk, 0, len(art.Chunks))
	for _, c := range art.Chunks {
		scored = append(scored, models.ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(queryVec, c.Vector),
		})
	}
	// stable sort keeps insertion order on tied scores
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
