package emotion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
)

// openaiBackend asks an OpenAI-compatible chat endpoint for label scores.
type openaiBackend struct {
	client *openai.Client
	model  string
	labels []analysis.Label
	system string
}

// NewOpenAIBackend creates a client for cfg. BaseURL may point at any
// OpenAI-compatible provider.
func NewOpenAIBackend(cfg config.OpenAIConfig, labels []analysis.Label) (Backend, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY and OPENAI_MODEL are required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &openaiBackend{
		client: &client,
		model:  cfg.Model,
		labels: append([]analysis.Label(nil), labels...),
		system: systemPrompt(labels),
	}, nil
}

func (b *openaiBackend) Name() string  { return config.BackendOpenAI }
func (b *openaiBackend) Model() string { return b.model }
func (b *openaiBackend) Close() error  { return nil }

func (b *openaiBackend) Predict(ctx context.Context, text string) ([]analysis.Score, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(b.system),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty chat completion")
	}
	return parseScores(resp.Choices[0].Message.Content, b.labels)
}
