package models

import "github.com/google/uuid"

// Question belongs to exactly one session. Immutable once the session is active.
type Question struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	Index        int       `json:"index"` // position in the session's question order
	Text         string    `json:"text"`
	Options      []Option  `json:"options,omitempty"`
	TimeLimitSec int       `json:"time_limit_sec"`
}

// Option is one selectable answer for a quiz-type question.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	Correct    bool      `json:"correct"`
}

// CorrectOption returns the first option flagged correct, or nil for
// free-text questions judged by the host.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].Correct {
			return &q.Options[i]
		}
	}
	return nil
}
