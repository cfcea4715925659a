package rank

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"

	"docnav/internal/index"
	"docnav/internal/models"
)

const collectionName = "docnav"

// Chromem ranks through an in-memory chromem-go collection built from the
// loaded artifact. The collection is constructed once per artifact and
// reused; the artifact never changes within a process lifetime.
type Chromem struct {
	mu        sync.Mutex
	built     *index.Artifact
	coll      *chromem.Collection
	byChunkID map[string]models.Chunk
}

func NewChromem() *Chromem { return &Chromem{} }

func (r *Chromem) Rank(ctx context.Context, queryVec []float32, art *index.Artifact, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	if len(art.Chunks) == 0 {
		return nil, nil
	}
	if k > len(art.Chunks) {
		k = len(art.Chunks)
	}

	coll, err := r.collection(ctx, art)
	if err != nil {
		return nil, err
	}

	results, err := coll.QueryEmbedding(ctx, queryVec, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		chunk, ok := r.byChunkID[res.ID]
		if !ok {
			return nil, fmt.Errorf("chromem returned unknown chunk id %s", res.ID)
		}
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Score: float64(res.Similarity)})
	}
	return scored, nil
}

func (r *Chromem) collection(ctx context.Context, art *index.Artifact) (*chromem.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.coll != nil && r.built == art {
		return r.coll, nil
	}

	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(art.Chunks))
	byID := make(map[string]models.Chunk, len(art.Chunks))
	for _, c := range art.Chunks {
		docs = append(docs, chromem.Document{
			ID:        c.ChunkID,
			Content:   c.Text,
			Embedding: c.Vector,
			Metadata:  map[string]string{"document_id": c.DocumentID},
		})
		byID[c.ChunkID] = c
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}

	r.built = art
	r.coll = coll
	r.byChunkID = byID
	return coll, nil
}

// New returns the ranker selected by name, defaulting to the linear scan.
func New(name string) Ranker {
	if name == "chromem" {
		return NewChromem()
	}
	return NewLinear()
}
