package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	model "github.com/zhouzirui/neuroaid/backend/internal/model/chat"
	chat "github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/response"
)

// ErrEmptyInput is returned for blank submissions. Nothing is classified or recorded.
var ErrEmptyInput = errors.New("please enter some text")

// Classifier ranks emotions for a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (emotion.Classification, error)
}

// Outcome is what one successful submission produced.
type Outcome struct {
	Record         model.Record           `json:"record"`
	Classification emotion.Classification `json:"classification"`
}

// Service runs the submit → classify → reply → record flow for sessions.
type Service struct {
	classifier Classifier
	sessions   *chat.Service
}

// NewService wires the flow.
func NewService(classifier Classifier, sessions *chat.Service) *Service {
	return &Service{classifier: classifier, sessions: sessions}
}

// Sessions exposes the underlying registry.
func (s *Service) Sessions() *chat.Service {
	return s.sessions
}

// Analyze classifies text and appends exactly one record to the session's
// history. Failed classifications leave the history untouched.
func (s *Service) Analyze(ctx context.Context, sessionID, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyInput
	}

	var outcome Outcome
	err := s.sessions.WithSession(ctx, sessionID, func(history *chat.History) error {
		result, err := s.classifier.Classify(ctx, text)
		if err != nil {
			return err
		}

		label := string(result.Top)
		record := history.Append(model.Record{
			Input:    text,
			Emotion:  label,
			Response: response.Select(label),
		})
		outcome = Outcome{Record: record, Classification: result}
		return nil
	})
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) || errors.Is(err, chat.ErrSessionRequired) {
			return Outcome{}, err
		}
		slog.Warn("analysis failed", "component", "companion", "sessionID", sessionID, "error", err)
		return Outcome{}, fmt.Errorf("analyze: %w", err)
	}

	slog.Info("interaction recorded", "component", "companion", "sessionID", sessionID,
		"emotion", outcome.Record.Emotion, "backend", outcome.Classification.Backend)
	return outcome, nil
}

// Clear empties the session's history.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.WithSession(ctx, sessionID, func(history *chat.History) error {
		history.Clear()
		return nil
	})
}

// History returns the session's records, most recent first.
func (s *Service) History(ctx context.Context, sessionID string) ([]model.Record, error) {
	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return history.Recent(), nil
}
