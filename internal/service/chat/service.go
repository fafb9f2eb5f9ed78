package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/neuroaid/backend/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

type sessionState struct {
	session chat.Session
	history *History
	// turn serialises the actions of one session.
	turn sync.Mutex
}

// Service keeps anonymous sessions and their histories in memory. Nothing is
// persisted; a restart forgets every session.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewService bootstraps the in-memory session registry.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]*sessionState),
	}
}

// CreateSession provisions an anonymous session with an empty history.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{session: session, history: NewHistory(session.ID)}
	s.mu.Unlock()

	return session, nil
}

// EnsureSession returns the session with sessionID, registering it first when
// it is unknown. Web visitors carry their session id in a cookie that may
// outlive a restart.
func (s *Service) EnsureSession(_ context.Context, sessionID string) (chat.Session, error) {
	if sessionID == "" {
		return chat.Session{}, ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[sessionID]; ok {
		return state.session, nil
	}

	session := chat.Session{ID: sessionID, CreatedAt: time.Now().UTC()}
	s.sessions[sessionID] = &sessionState{session: session, history: NewHistory(sessionID)}
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return state.session, nil
}

// History returns the live history of a session.
func (s *Service) History(_ context.Context, sessionID string) (*History, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return state.history, nil
}

// WithSession runs fn while holding the session's turn lock, so that actions
// of one session never interleave.
func (s *Service) WithSession(_ context.Context, sessionID string, fn func(*History) error) error {
	state, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	state.turn.Lock()
	defer state.turn.Unlock()
	return fn(state.history)
}

// DeleteSession forgets a session and its history.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}
