package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionMode defines which phase machine a session runs.
type SessionMode string

const (
	SessionModeBuzzer SessionMode = "BUZZER"
	SessionModeQuiz   SessionMode = "QUIZ"
)

// SessionStatus defines the lifecycle status of a session.
type SessionStatus string

const (
	SessionStatusDraft  SessionStatus = "DRAFT"
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusEnded  SessionStatus = "ENDED"
)

// Session represents one live event: a host, a question list, and a join code.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	HostID    uuid.UUID     `json:"host_id"`
	Code      string        `json:"code"` // human-entry join code, globally unique
	Mode      SessionMode   `json:"mode"`
	Status    SessionStatus `json:"status"`
	Questions []Question    `json:"questions,omitempty"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// QuestionAt returns the question at the given index, or nil when out of range.
func (s *Session) QuestionAt(index int) *Question {
	if index < 0 || index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[index]
}
