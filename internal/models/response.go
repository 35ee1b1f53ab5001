package models

import (
	"time"

	"github.com/google/uuid"
)

// Response is one participant's answer to one question. Immutable once recorded:
// at most one response per (participant, question) pair is ever accepted, later
// submissions are rejected rather than overwritten.
type Response struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     uuid.UUID  `json:"session_id"`
	ParticipantID uuid.UUID  `json:"participant_id"`
	QuestionID    uuid.UUID  `json:"question_id"`
	OptionID      *uuid.UUID `json:"option_id,omitempty"` // nil for free-text answers
	FreeText      string     `json:"free_text,omitempty"`
	LatencyMs     int        `json:"latency_ms"` // measured from question open to receipt
	Correct       bool       `json:"correct"`
	Points        int        `json:"points"`
	AnsweredAt    time.Time  `json:"answered_at"`
}
