package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents one joined client. Blocked participants are soft-removed
// while a session is active so their response history stays intact; hard deletes
// only happen before launch.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"` // session-scoped identity, stable across reconnects
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar,omitempty"`
	Score     int       `json:"score"`
	Streak    int       `json:"streak"` // consecutive correct answers
	Blocked   bool      `json:"blocked"`
	JoinedAt  time.Time `json:"joined_at"`
}
