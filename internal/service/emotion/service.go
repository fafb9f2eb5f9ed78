package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
)

var (
	ErrEmptyText      = errors.New("text is required")
	ErrClassification = errors.New("emotion classification failed")
	ErrNoScores       = errors.New("classifier returned no scores")
)

// Backend is a single pre-trained classifier reachable from this process.
type Backend interface {
	// Name identifies the backend kind, e.g. "onnx".
	Name() string
	// Model identifies the underlying model.
	Model() string
	// Predict returns one score per label of the model's fixed label set, in any order.
	Predict(ctx context.Context, text string) ([]analysis.Score, error)
	Close() error
}

// Classification is the ranked outcome of one classifier call.
type Classification struct {
	Scores  []analysis.Score `json:"scores"`
	Top     analysis.Label   `json:"top"`
	Backend string           `json:"backend"`
	Model   string           `json:"model"`
}

// TopScore returns the highest-ranked score.
func (c Classification) TopScore() analysis.Score {
	if len(c.Scores) == 0 {
		return analysis.Score{}
	}
	return c.Scores[0]
}

// Config 控制分类服务的行为。
type Config struct {
	Timeout time.Duration
}

// Service adapts a Backend into ranked classifications. Every call reaches the
// backend; nothing is cached or thresholded.
type Service struct {
	backend  Backend
	timeout  time.Duration
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewService wraps backend. Instruments come from the global OpenTelemetry
// providers, which are no-ops unless telemetry was initialised.
func NewService(backend Backend, cfg Config) (*Service, error) {
	if backend == nil {
		return nil, errors.New("emotion backend is required")
	}

	meter := otel.Meter("github.com/zhouzirui/neuroaid/backend/internal/service/emotion")
	calls, err := meter.Int64Counter("emotion.classifications",
		metric.WithDescription("Classifier invocations by backend and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create classification counter: %w", err)
	}
	duration, err := meter.Float64Histogram("emotion.classify.duration",
		metric.WithDescription("Classifier latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create classification histogram: %w", err)
	}

	return &Service{
		backend:  backend,
		timeout:  cfg.Timeout,
		tracer:   otel.Tracer("github.com/zhouzirui/neuroaid/backend/internal/service/emotion"),
		calls:    calls,
		duration: duration,
	}, nil
}

// Backend returns the name of the wrapped backend.
func (s *Service) Backend() string {
	return s.backend.Name()
}

// Model returns the model served by the wrapped backend.
func (s *Service) Model() string {
	return s.backend.Model()
}

// Classify ranks every label for text by descending confidence.
func (s *Service) Classify(ctx context.Context, text string) (Classification, error) {
	if strings.TrimSpace(text) == "" {
		return Classification{}, ErrEmptyText
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	backendAttr := attribute.String("emotion.backend", s.backend.Name())
	ctx, span := s.tracer.Start(ctx, "emotion.classify", trace.WithAttributes(
		backendAttr,
		attribute.String("emotion.model", s.backend.Model()),
		attribute.Int("emotion.input_length", len(text)),
	))
	defer span.End()

	start := time.Now()
	raw, err := s.backend.Predict(ctx, text)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	s.duration.Record(ctx, elapsed, metric.WithAttributes(backendAttr))

	if err == nil && len(raw) == 0 {
		err = ErrNoScores
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		s.calls.Add(ctx, 1, metric.WithAttributes(backendAttr, attribute.String("outcome", "error")))
		slog.Error("classifier call failed", "component", "emotion", "backend", s.backend.Name(), "error", err)
		return Classification{}, fmt.Errorf("%w: %s: %w", ErrClassification, s.backend.Name(), err)
	}

	ranked := analysis.Rank(raw)
	result := Classification{
		Scores:  ranked,
		Top:     ranked[0].Label,
		Backend: s.backend.Name(),
		Model:   s.backend.Model(),
	}

	span.SetAttributes(
		attribute.String("emotion.top", string(result.Top)),
		attribute.Float64("emotion.confidence", ranked[0].Confidence),
	)
	s.calls.Add(ctx, 1, metric.WithAttributes(backendAttr, attribute.String("outcome", "ok")))
	slog.Debug("classified text", "component", "emotion", "backend", result.Backend, "top", result.Top, "confidence", ranked[0].Confidence, "elapsed_ms", elapsed)
	return result, nil
}

// Close releases the backend.
func (s *Service) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
