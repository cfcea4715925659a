package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docnav/internal/config"
	"docnav/internal/errs"
	"docnav/internal/retry"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelID() string
}

// Adapter wraps the external embedding model with batching, bounded retry
// and response-shape validation at the provider boundary.
type Adapter struct {
	impl      *embeddings.EmbedderImpl
	model     string
	dimension int
	batchSize int
	policy    retry.Policy
}

func NewAdapter(cfg config.LLMConfig, policy retry.Policy) (*Adapter, error) {
	client, err := newEmbedderClient(cfg)
	if err != nil {
		return nil, err
	}
	impl, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, err
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 32
	}
	return &Adapter{
		impl:      impl,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: batch,
		policy:    policy,
	}, nil
}

func newEmbedderClient(cfg config.LLMConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if key := cfg.APIKey(); key != "" {
			opts = append(opts, openai.WithToken(key))
		}
		return openai.New(opts...)
	}
}

func (a *Adapter) Dimension() int  { return a.dimension }
func (a *Adapter) ModelID() string { return a.model }

// EmbedOne embeds a single query string with one provider call per attempt.
func (a *Adapter) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := a.policy.Do(ctx, "embed_one", func(ctx context.Context) error {
		v, err := a.impl.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, errs.Provider("embed_one", err)
	}
	if err := a.checkVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds texts in provider-sized batches. Used during index
// build to amortize network cost.
func (a *Adapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += a.batchSize {
		end := start + a.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var vecs [][]float32
		err := a.policy.Do(ctx, "embed_batch", func(ctx context.Context) error {
			v, err := a.impl.EmbedDocuments(ctx, batch)
			if err != nil {
				return err
			}
			vecs = v
			return nil
		})
		if err != nil {
			return nil, errs.Provider("embed_batch", err)
		}
		if len(vecs) != len(batch) {
			return nil, errs.Provider("embed_batch", fmt.Errorf("provider returned %d vectors for %d inputs", len(vecs), len(batch)))
		}
		for _, v := range vecs {
			if err := a.checkVector(v); err != nil {
				return nil, err
			}
		}
		log.Debug().Int("batch", len(batch)).Int("total", len(texts)).Msg("Embedded batch")
		out = append(out, vecs...)
	}
	return out, nil
}

// checkVector enforces the expected response shape so malformed provider
// output never reaches the index or the ranker.
func (a *Adapter) checkVector(v []float32) error {
	if len(v) == 0 {
		return errs.Provider("embed", fmt.Errorf("provider returned an empty embedding"))
	}
	if len(v) != a.dimension {
		return errs.Provider("embed", fmt.Errorf("%w: got %d, want %d", errs.ErrDimensionMismatch, len(v), a.dimension))
	}
	return nil
}
