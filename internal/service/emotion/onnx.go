package emotion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
)

var (
	onnxInputNames  = []string{"input_ids", "attention_mask"}
	onnxOutputNames = []string{"logits"}
)

// onnxBackend runs a sequence-classification model exported to ONNX together
// with its HuggingFace tokenizer.json. The output logits are softmaxed over the
// configured label set, whose order must match the model's id2label mapping.
type onnxBackend struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	labels    []analysis.Label
	maxSeqLen int
	model     string
}

// NewONNXBackend loads the ONNX runtime, the tokenizer and the model session.
func NewONNXBackend(cfg config.ONNXConfig, model string, labels []analysis.Label) (Backend, error) {
	if !cfg.Enabled() {
		return nil, errors.New("ONNX_MODEL_PATH and ONNX_TOKENIZER_PATH are required")
	}
	if model == "" {
		model = filepath.Base(cfg.ModelPath)
	}

	if cfg.RuntimeLib != "" {
		ort.SetSharedLibraryPath(cfg.RuntimeLib)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		_ = ort.DestroyEnvironment()
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, onnxInputNames, onnxOutputNames, nil)
	if err != nil {
		_ = ort.DestroyEnvironment()
		return nil, fmt.Errorf("create onnx session for %s: %w", cfg.ModelPath, err)
	}

	return &onnxBackend{
		session:   session,
		tk:        tk,
		labels:    append([]analysis.Label(nil), labels...),
		maxSeqLen: cfg.MaxSeqLen,
		model:     model,
	}, nil
}

func (b *onnxBackend) Name() string  { return config.BackendONNX }
func (b *onnxBackend) Model() string { return b.model }

func (b *onnxBackend) Predict(ctx context.Context, text string) ([]analysis.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoding, err := b.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask := truncateTokens(encoding.Ids, encoding.AttentionMask, b.maxSeqLen)
	if len(ids) == 0 {
		return nil, errors.New("tokenizer produced no tokens")
	}

	seqLen := int64(len(ids))
	inputIDs, err := ort.NewTensor(ort.NewShape(1, seqLen), toInt64(ids))
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputIDs.Destroy()

	attention, err := ort.NewTensor(ort.NewShape(1, seqLen), toInt64(mask))
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer attention.Destroy()

	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(b.labels))))
	if err != nil {
		return nil, fmt.Errorf("create logits tensor: %w", err)
	}
	defer logits.Destroy()

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return nil, errors.New("onnx session is closed")
	}
	err = b.session.Run([]ort.Value{inputIDs, attention}, []ort.Value{logits})
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}

	probs := analysis.Softmax(logits.GetData())
	scores := make([]analysis.Score, len(b.labels))
	for i, label := range b.labels {
		scores[i] = analysis.Score{Label: label, Confidence: probs[i]}
	}
	return scores, nil
}

// Close releases the session and the runtime environment.
func (b *onnxBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	err := b.session.Destroy()
	b.session = nil
	return errors.Join(err, ort.DestroyEnvironment())
}

// truncateTokens keeps at most maxLen tokens while preserving the trailing
// end-of-sequence token the tokenizer appended.
func truncateTokens(ids, mask []int, maxLen int) ([]int, []int) {
	if len(mask) != len(ids) {
		mask = make([]int, len(ids))
		for i := range mask {
			mask[i] = 1
		}
	}
	if maxLen <= 0 || len(ids) <= maxLen {
		return ids, mask
	}

	outIDs := append(append([]int(nil), ids[:maxLen-1]...), ids[len(ids)-1])
	outMask := append(append([]int(nil), mask[:maxLen-1]...), mask[len(mask)-1])
	return outIDs, outMask
}

func toInt64(values []int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
