package companion

import (
	"context"
	"errors"
	"testing"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
	chat "github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/response"
)

type stubClassifier struct {
	result emotion.Classification
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (emotion.Classification, error) {
	s.calls++
	return s.result, s.err
}

func newSession(t *testing.T, sessions *chat.Service) string {
	t.Helper()
	session, err := sessions.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return session.ID
}

func TestAnalyzeJoyExample(t *testing.T) {
	backend := emotion.NewKeywordBackend(analysis.DefaultModelLabels())
	classifier, err := emotion.NewService(backend, emotion.Config{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	sessions := chat.NewService()
	svc := NewService(classifier, sessions)
	id := newSession(t, sessions)

	outcome, err := svc.Analyze(context.Background(), id, "I got the job, I'm so excited!")
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}

	want := "I'm really happy to hear that! 😊 Want to talk more about what's making you feel this way?"
	if outcome.Record.Emotion != "joy" || outcome.Record.Response != want {
		t.Fatalf("unexpected record: %+v", outcome.Record)
	}
	if outcome.Classification.Backend != config.BackendKeyword {
		t.Fatalf("unexpected backend: %s", outcome.Classification.Backend)
	}

	history, _ := svc.History(context.Background(), id)
	if len(history) != 1 {
		t.Fatalf("expected one record, got %d", len(history))
	}
}

func TestAnalyzeRecordsTopLabelAndReply(t *testing.T) {
	stub := &stubClassifier{result: emotion.Classification{
		Scores: []analysis.Score{{Label: analysis.Fear, Confidence: 0.7}, {Label: analysis.Joy, Confidence: 0.3}},
		Top:    analysis.Fear,
	}}
	sessions := chat.NewService()
	svc := NewService(stub, sessions)
	id := newSession(t, sessions)

	for _, text := range []string{"one", "two"} {
		if _, err := svc.Analyze(context.Background(), id, text); err != nil {
			t.Fatalf("Analyze err: %v", err)
		}
	}

	history, err := svc.History(context.Background(), id)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(history) != 2 || history[0].Input != "two" {
		t.Fatalf("expected newest first, got %+v", history)
	}
	for _, record := range history {
		if record.Emotion != "fear" || record.Response != response.Select("fear") {
			t.Fatalf("unexpected record: %+v", record)
		}
	}
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	stub := &stubClassifier{}
	sessions := chat.NewService()
	svc := NewService(stub, sessions)
	id := newSession(t, sessions)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Analyze(context.Background(), id, text); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput for %q, got %v", text, err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("classifier must not be called, got %d calls", stub.calls)
	}
	history, _ := svc.History(context.Background(), id)
	if len(history) != 0 {
		t.Fatalf("expected no records, got %d", len(history))
	}
}

func TestAnalyzeClassifierFailureLeavesHistory(t *testing.T) {
	stub := &stubClassifier{err: emotion.ErrClassification}
	sessions := chat.NewService()
	svc := NewService(stub, sessions)
	id := newSession(t, sessions)

	if _, err := svc.Analyze(context.Background(), id, "hello"); !errors.Is(err, emotion.ErrClassification) {
		t.Fatalf("expected classification error, got %v", err)
	}
	history, _ := svc.History(context.Background(), id)
	if len(history) != 0 {
		t.Fatalf("expected no records, got %d", len(history))
	}
}

func TestAnalyzeUnknownSession(t *testing.T) {
	svc := NewService(&stubClassifier{}, chat.NewService())

	if _, err := svc.Analyze(context.Background(), "missing", "hello"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestClearEmptiesHistory(t *testing.T) {
	stub := &stubClassifier{result: emotion.Classification{
		Scores: []analysis.Score{{Label: analysis.Neutral, Confidence: 1}},
		Top:    analysis.Neutral,
	}}
	sessions := chat.NewService()
	svc := NewService(stub, sessions)
	id := newSession(t, sessions)

	if err := svc.Clear(context.Background(), id); err != nil {
		t.Fatalf("Clear on empty history err: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Analyze(context.Background(), id, "ok"); err != nil {
			t.Fatalf("Analyze err: %v", err)
		}
	}
	if err := svc.Clear(context.Background(), id); err != nil {
		t.Fatalf("Clear err: %v", err)
	}

	history, _ := svc.History(context.Background(), id)
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d", len(history))
	}
}
