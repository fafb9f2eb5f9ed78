package chat

import "time"

// Record is one completed interaction: the submitted text, the top emotion
// label and the reply that was shown. Records are never edited after they
// are appended to a history.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Input     string    `json:"input"`
	Emotion   string    `json:"emotion"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}
