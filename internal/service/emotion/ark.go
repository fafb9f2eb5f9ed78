package emotion

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
)

// arkBackend 通过 eino 链路调用方舟大模型完成情绪打分。
type arkBackend struct {
	classifier compose.Runnable[map[string]any, *schema.Message]
	labels     []analysis.Label
	model      string
	system     string
}

// NewArkBackend compiles a prompt → chat model chain over the Ark model in cfg.
func NewArkBackend(ctx context.Context, cfg config.ArkConfig, labels []analysis.Label) (Backend, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newChainBackend(ctx, chatModel, cfg.Model, labels)
}

// newChainBackend 把任意 eino 聊天模型接到分类提示词后面。
func newChainBackend(ctx context.Context, chatModel model.BaseChatModel, modelName string, labels []analysis.Label) (Backend, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{text}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	return &arkBackend{
		classifier: runnable,
		labels:     append([]analysis.Label(nil), labels...),
		model:      modelName,
		system:     systemPrompt(labels),
	}, nil
}

func (b *arkBackend) Name() string  { return config.BackendArk }
func (b *arkBackend) Model() string { return b.model }
func (b *arkBackend) Close() error  { return nil }

func (b *arkBackend) Predict(ctx context.Context, text string) ([]analysis.Score, error) {
	msg, err := b.classifier.Invoke(ctx, map[string]any{
		"system": b.system,
		"text":   text,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke classifier chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("empty classifier reply")
	}
	return parseScores(msg.Content, b.labels)
}
