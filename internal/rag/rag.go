package rag

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docnav/internal/embedding"
	"docnav/internal/errs"
	"docnav/internal/index"
	"docnav/internal/llmservice"
	"docnav/internal/models"
	"docnav/internal/rank"
)

// IndexLoader is the cached-index dependency; satisfied by *index.Loader.
type IndexLoader interface {
	Load(ctx context.Context) (*index.Artifact, error)
}

// Options tunes the query pipeline.
type Options struct {
	TopK            int
	MaxContextChars int
}

// RAG is the top-level query orchestrator: a linear pipeline of
// validate, embed, load, rank, assemble, generate, package.
type RAG struct {
	embedder  embedding.Embedder
	loader    IndexLoader
	ranker    rank.Ranker
	generator llmservice.Generator
	opts      Options
}

func NewRAG(embedder embedding.Embedder, loader IndexLoader, ranker rank.Ranker, generator llmservice.Generator, opts Options) *RAG {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 12000
	}
	return &RAG{embedder: embedder, loader: loader, ranker: ranker, generator: generator, opts: opts}
}

// AnswerQuestion answers one natural-language question from the indexed
// documents, returning the answer with its source citations.
func (r *RAG) AnswerQuestion(ctx context.Context, question string) (*models.Answer, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Logger()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errs.Validation("answer_question", "Please provide a non-empty question")
	}
	logger.Info().Str("question", truncate(question, 80)).Msg("Question received")

	queryVec, err := r.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}

	artifact, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	ranked, err := r.ranker.Rank(ctx, queryVec, artifact, r.opts.TopK)
	if err != nil {
		return nil, err
	}

	assembled := AssembleContext(ranked, r.opts.MaxContextChars)
	if assembled.ChunksUsed == 0 {
		logger.Info().Msg("No relevant chunks retrieved, answering without generation")
		return &models.Answer{
			Answer:      models.NoContextAnswer,
			Sources:     []string{},
			ChunksUsed:  0,
			ModelUsed:   r.generator.ModelID(),
			Metrics:     models.Metrics{ResponseTime: roundSeconds(time.Since(start))},
			RequestID:   requestID,
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	generated, err := r.generator.Generate(ctx, question, assembled.Text)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		Answer:     generated.Text,
		Sources:    assembled.Sources,
		ChunksUsed: assembled.ChunksUsed,
		ModelUsed:  r.generator.ModelID(),
		Metrics: models.Metrics{
			ResponseTime: roundSeconds(time.Since(start)),
			Tokens:       generated.Tokens,
		},
		RequestID:   requestID,
		GeneratedAt: time.Now().UTC(),
	}
	logger.Info().Int("chunks_used", answer.ChunksUsed).Int("sources", len(answer.Sources)).Float64("response_time", answer.Metrics.ResponseTime).Msg("Answer prepared")
	return answer, nil
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000.0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
