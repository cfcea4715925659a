package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/errs"
	"docnav/internal/index"
	"docnav/internal/llmservice"
	"docnav/internal/models"
	"docnav/internal/rank"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := f.EmbedOne(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int  { return len(f.vec) }
func (f *fakeEmbedder) ModelID() string { return "fake-embed" }

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, question, contextText string) (llmservice.Result, error) {
	f.calls++
	if f.err != nil {
		return llmservice.Result{}, f.err
	}
	return llmservice.Result{Text: f.text, Tokens: models.TokenUsage{Input: 120, Output: 40}}, nil
}

func (f *fakeGenerator) ModelID() string { return "fake-llm" }

type fakeLoader struct {
	art *index.Artifact
	err error
}

func (f *fakeLoader) Load(ctx context.Context) (*index.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.art, nil
}

func testArtifact() *index.Artifact {
	return &index.Artifact{
		Metadata: index.Metadata{Dimension: 2, TotalChunks: 3},
		Chunks: []models.Chunk{
			{ChunkID: "a.pdf:0", DocumentID: "a.pdf", Text: "alpha facts", Vector: []float32{1, 0}},
			{ChunkID: "a.pdf:1", DocumentID: "a.pdf", Text: "more alpha facts", Vector: []float32{0.9, 0.1}},
			{ChunkID: "b.pdf:0", DocumentID: "b.pdf", Text: "beta facts", Vector: []float32{0, 1}},
		},
	}
}

func newTestRAG(emb *fakeEmbedder, loader IndexLoader, gen *fakeGenerator) *RAG {
	return NewRAG(emb, loader, rank.NewLinear(), gen, Options{TopK: 5, MaxContextChars: 10000})
}

func TestAnswerQuestionRejectsEmptyQuestion(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{text: "answer"}
	r := newTestRAG(emb, &fakeLoader{art: testArtifact()}, gen)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := r.AnswerQuestion(context.Background(), q)
		require.Error(t, err)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	}
	require.Zero(t, emb.calls, "no embedding call for invalid input")
	require.Zero(t, gen.calls, "no generation call for invalid input")
}

func TestAnswerQuestionHappyPath(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{text: "Alpha is documented in a.pdf."}
	r := newTestRAG(emb, &fakeLoader{art: testArtifact()}, gen)

	answer, err := r.AnswerQuestion(context.Background(), "what is alpha?")
	require.NoError(t, err)

	require.Equal(t, "Alpha is documented in a.pdf.", answer.Answer)
	require.Equal(t, 3, answer.ChunksUsed)
	require.Equal(t, "fake-llm", answer.ModelUsed)
	require.Equal(t, 120, answer.Metrics.Tokens.Input)
	require.Equal(t, 40, answer.Metrics.Tokens.Output)
	require.NotEmpty(t, answer.RequestID)
	require.Equal(t, 1, emb.calls)
	require.Equal(t, 1, gen.calls)
}

func TestAnswerQuestionDeduplicatesSources(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{text: "answer"}
	// top 2 both come from a.pdf
	r := NewRAG(emb, &fakeLoader{art: testArtifact()}, rank.NewLinear(), gen, Options{TopK: 2, MaxContextChars: 10000})

	answer, err := r.AnswerQuestion(context.Background(), "what is alpha?")
	require.NoError(t, err)
	require.Equal(t, 2, answer.ChunksUsed)
	require.Equal(t, []string{"a.pdf"}, answer.Sources)
}

func TestAnswerQuestionEmptyIndex(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{text: "should not be called"}
	r := newTestRAG(emb, &fakeLoader{art: &index.Artifact{}}, gen)

	answer, err := r.AnswerQuestion(context.Background(), "anything at all?")
	require.NoError(t, err)

	require.Equal(t, models.NoContextAnswer, answer.Answer)
	require.Equal(t, 0, answer.ChunksUsed)
	require.Empty(t, answer.Sources)
	require.Zero(t, gen.calls, "generation must be skipped with no retrieved context")
}

func TestAnswerQuestionEmbeddingProviderFailure(t *testing.T) {
	emb := &fakeEmbedder{err: errs.Provider("embed_one", fmt.Errorf("rate limited"))}
	gen := &fakeGenerator{text: "unused"}
	r := newTestRAG(emb, &fakeLoader{art: testArtifact()}, gen)

	_, err := r.AnswerQuestion(context.Background(), "a question")
	require.Error(t, err)
	require.Equal(t, errs.KindProvider, errs.KindOf(err))
	require.Zero(t, gen.calls, "no generation after embedding failure")
}

func TestAnswerQuestionIndexUnavailable(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{text: "unused"}
	loader := &fakeLoader{err: errs.IndexUnavailable("load", fmt.Errorf("missing key"))}
	r := newTestRAG(emb, loader, gen)

	_, err := r.AnswerQuestion(context.Background(), "a question")
	require.Error(t, err)
	require.Equal(t, errs.KindIndexUnavailable, errs.KindOf(err))
	require.Zero(t, gen.calls)
}

func TestAnswerQuestionGenerationFailure(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	gen := &fakeGenerator{err: errs.Provider("generate", fmt.Errorf("backend down"))}
	r := newTestRAG(emb, &fakeLoader{art: testArtifact()}, gen)

	_, err := r.AnswerQuestion(context.Background(), "a question")
	require.Error(t, err)
	require.Equal(t, errs.KindProvider, errs.KindOf(err))
	require.Equal(t, 1, gen.calls)
}
