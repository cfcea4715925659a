package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docnav/internal/config"
	"docnav/internal/errs"
	"docnav/internal/models"
	"docnav/internal/retry"
)

const (
	temperature = 0.1
	maxTokens   = 2048
)

// Result is one generated answer plus provider-reported usage.
type Result struct {
	Text   string
	Tokens models.TokenUsage
}

// Generator produces an answer from a question and assembled context.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (Result, error)
	ModelID() string
}

// Client wraps the external generation model behind the shared retry
// policy. One call per query, no streaming, no conversation state.
type Client struct {
	llm    llms.Model
	model  string
	policy retry.Policy
}

func NewClient(cfg config.LLMConfig, policy retry.Policy) (*Client, error) {
	llm, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, model: cfg.Model, policy: policy}, nil
}

func newModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if key := cfg.APIKey(); key != "" {
			opts = append(opts, openai.WithToken(strings.TrimPrefix(key, "Bearer ")))
		}
		return openai.New(opts...)
	}
}

func (c *Client) ModelID() string { return c.model }

// Generate builds the fixed prompt and invokes the model once per attempt.
func (c *Client) Generate(ctx context.Context, question, contextText string) (Result, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextText, question)

	msgContent := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	var res *llms.ContentResponse
	err := c.policy.Do(ctx, "generate", func(ctx context.Context) error {
		r, err := c.llm.GenerateContent(ctx, msgContent,
			llms.WithTemperature(temperature),
			llms.WithMaxTokens(maxTokens),
		)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return Result{}, errs.Provider("generate", err)
	}

	if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Content) == "" {
		return Result{}, errs.Provider("generate", fmt.Errorf("provider returned no answer text"))
	}
	choice := res.Choices[0]

	tokens := usageFromInfo(choice.GenerationInfo)
	if tokens.Input == 0 && tokens.Output == 0 {
		tokens = models.TokenUsage{
			Input:  EstimateTokens(prompt),
			Output: EstimateTokens(choice.Content),
		}
	}
	log.Debug().Int("input_tokens", tokens.Input).Int("output_tokens", tokens.Output).Msg("Generated answer")

	return Result{Text: choice.Content, Tokens: tokens}, nil
}

// usageFromInfo passes through model-reported token counts when present.
func usageFromInfo(info map[string]any) models.TokenUsage {
	var usage models.TokenUsage
	if n, ok := asInt(info["PromptTokens"]); ok {
		usage.Input = n
	}
	if n, ok := asInt(info["CompletionTokens"]); ok {
		usage.Output = n
	}
	return usage
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// EstimateTokens approximates usage when the provider reports none.
// One word is roughly 1.3 tokens.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
