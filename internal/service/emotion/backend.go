package emotion

import (
	"context"
	"fmt"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
)

// NewBackend builds the backend selected by cfg.
func NewBackend(ctx context.Context, cfg config.EmotionConfig) (Backend, error) {
	labels := analysis.ParseLabels(cfg.Labels)
	if len(labels) == 0 {
		labels = analysis.DefaultModelLabels()
	}

	switch name := cfg.ResolveBackend(); name {
	case config.BackendKeyword:
		return NewKeywordBackend(labels), nil
	case config.BackendONNX:
		return NewONNXBackend(cfg.ONNX, cfg.Model, labels)
	case config.BackendArk:
		return NewArkBackend(ctx, cfg.Ark, labels)
	case config.BackendOpenAI:
		return NewOpenAIBackend(cfg.OpenAI, labels)
	case config.BackendGemini:
		return NewGeminiBackend(ctx, cfg.Gemini, labels)
	default:
		return nil, fmt.Errorf("unsupported emotion backend %q", name)
	}
}

// keywordBackend scores text with the keyword heuristic. It needs no model
// files or credentials.
type keywordBackend struct {
	labels []analysis.Label
}

// NewKeywordBackend returns the heuristic backend over labels.
func NewKeywordBackend(labels []analysis.Label) Backend {
	return &keywordBackend{labels: append([]analysis.Label(nil), labels...)}
}

func (b *keywordBackend) Name() string  { return config.BackendKeyword }
func (b *keywordBackend) Model() string { return "keyword-heuristic" }
func (b *keywordBackend) Close() error  { return nil }

func (b *keywordBackend) Predict(ctx context.Context, text string) ([]analysis.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analysis.Distribution(text, b.labels), nil
}
