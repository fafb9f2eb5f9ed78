package emotion

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
)

type geminiBackend struct {
	client *genai.Client
	model  string
	labels []analysis.Label
	system string
}

// NewGeminiBackend creates a Gemini API client for cfg.
func NewGeminiBackend(ctx context.Context, cfg config.GeminiConfig, labels []analysis.Label) (Backend, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("GOOGLE_API_KEY and GEMINI_MODEL are required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiBackend{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
		labels: append([]analysis.Label(nil), labels...),
		system: systemPrompt(labels),
	}, nil
}

func (b *geminiBackend) Name() string  { return config.BackendGemini }
func (b *geminiBackend) Model() string { return b.model }
func (b *geminiBackend) Close() error  { return nil }

func (b *geminiBackend) Predict(ctx context.Context, text string) ([]analysis.Score, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(b.system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}
	return parseScores(resp.Text(), b.labels)
}
