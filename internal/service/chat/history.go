package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/neuroaid/backend/internal/model/chat"
)

// History is the in-memory interaction log of one session.
type History struct {
	sessionID string

	mu      sync.RWMutex
	records []chat.Record
}

// NewHistory returns an empty history bound to sessionID.
func NewHistory(sessionID string) *History {
	return &History{
		sessionID: sessionID,
		records:   make([]chat.Record, 0, 16),
	}
}

// SessionID returns the owning session.
func (h *History) SessionID() string {
	return h.sessionID
}

// Append stores record at the end of the history and returns the stored copy
// with its ID, SessionID and CreatedAt filled in.
func (h *History) Append(record chat.Record) chat.Record {
	record.ID = uuid.NewString()
	record.SessionID = h.sessionID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	h.mu.Lock()
	h.records = append(h.records, record)
	h.mu.Unlock()
	return record
}

// Records returns the history oldest first.
func (h *History) Records() []chat.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	copied := make([]chat.Record, len(h.records))
	copy(copied, h.records)
	return copied
}

// Recent returns the history most recent first.
func (h *History) Recent() []chat.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	reversed := make([]chat.Record, len(h.records))
	for i, record := range h.records {
		reversed[len(h.records)-1-i] = record
	}
	return reversed
}

// Len 返回记录条数。
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Clear drops every record. Clearing an empty history is a no-op.
func (h *History) Clear() {
	h.mu.Lock()
	h.records = h.records[:0:0]
	h.mu.Unlock()
}
