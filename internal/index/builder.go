package index

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"docnav/internal/chunker"
	"docnav/internal/embedding"
	"docnav/internal/errs"
	"docnav/internal/models"
	"docnav/internal/storage"
)

// Builder runs the offline pipeline: chunk every document, embed every
// chunk, then publish one artifact atomically. A failure on any document
// aborts the whole build; a partial index is never published.
type Builder struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	store    storage.ObjectStore
	key      string

	chunkSize    int
	chunkOverlap int
}

func NewBuilder(ch *chunker.Chunker, emb embedding.Embedder, store storage.ObjectStore, key string, chunkSize, chunkOverlap int) *Builder {
	return &Builder{
		chunker:      ch,
		embedder:     emb,
		store:        store,
		key:          key,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Build chunks and embeds all documents into an in-memory artifact.
func (b *Builder) Build(ctx context.Context, docs []models.Document) (*Artifact, error) {
	var all []models.Chunk
	for _, doc := range docs {
		chunks := b.chunker.Split(doc)
		if len(chunks) == 0 {
			log.Warn().Str("document", doc.ID).Msg("Document produced no chunks, skipping")
			continue
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, errs.BuildAborted("build", fmt.Errorf("embedding document %s: %w", doc.ID, err))
		}
		for i := range chunks {
			chunks[i].Vector = vectors[i]
		}
		all = append(all, chunks...)
		log.Info().Str("document", doc.ID).Int("chunks", len(chunks)).Msg("Document indexed")
	}

	return &Artifact{
		Metadata: Metadata{
			ModelID:      b.embedder.ModelID(),
			Dimension:    b.embedder.Dimension(),
			ChunkSize:    b.chunkSize,
			ChunkOverlap: b.chunkOverlap,
			TotalChunks:  len(all),
			BuiltAt:      time.Now().UTC(),
		},
		Chunks: all,
	}, nil
}

// Publish encodes the artifact and replaces whatever is under the
// canonical key.
func (b *Builder) Publish(ctx context.Context, art *Artifact) error {
	data, err := art.Encode()
	if err != nil {
		return errs.BuildAborted("publish", err)
	}
	if err := b.store.Put(ctx, b.key, data); err != nil {
		return errs.BuildAborted("publish", err)
	}
	log.Info().Str("key", b.key).Int("chunks", art.Metadata.TotalChunks).Int("bytes", len(data)).Msg("Index published")
	return nil
}

// Run is the full offline entry point: Build then Publish.
func (b *Builder) Run(ctx context.Context, docs []models.Document) (*Artifact, error) {
	art, err := b.Build(ctx, docs)
	if err != nil {
		return nil, err
	}
	if err := b.Publish(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}
