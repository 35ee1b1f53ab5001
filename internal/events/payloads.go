package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/models"
)

// Payload types shared between the host engine, the participant mirror, and the
// gateway.

// GameStatePayload carries a full authoritative state snapshot. Broadcast on
// every phase change, on the periodic rebroadcast, and in response to a
// state-request from a late joiner or reconnecting client.
type GameStatePayload struct {
	State models.GameState `json:"state"`
}

// BuzzerOpenPayload is the payload for a buzzer-open event.
type BuzzerOpenPayload struct {
	QuestionIndex int       `json:"question_index"`
	TimeLimitSec  int       `json:"time_limit_sec"`
	OpenedAt      time.Time `json:"opened_at"`
}

// BuzzerClosedPayload is the payload for a buzzer-closed event. It carries the
// final queue so every client can render the standing.
type BuzzerClosedPayload struct {
	QuestionIndex int         `json:"question_index"`
	Queue         []uuid.UUID `json:"queue"`
}

// BuzzerPressPayload is a participant's claim on an open buzzer window. The
// client timestamp is informational only: ordering is by host receipt.
type BuzzerPressPayload struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	QuestionIndex int       `json:"question_index"`
	PressedAt     time.Time `json:"pressed_at"`
}

// ActiveParticipantPayload announces who is privileged to answer. Also carries
// the current queue so clients need no earlier message to render it.
type ActiveParticipantPayload struct {
	ParticipantID *uuid.UUID  `json:"participant_id,omitempty"`
	Queue         []uuid.UUID `json:"queue"`
}

// TimerPayload is shared by timer-start, timer-pause, and timer-tick. Clients
// reset their local render countdown to RemainingSec on every receipt.
type TimerPayload struct {
	QuestionIndex int  `json:"question_index"`
	RemainingSec  int  `json:"remaining_sec"`
	TotalSec      int  `json:"total_sec"`
	Running       bool `json:"running"`
}

// ScoreUpdatePayload announces one participant's new totals after a judged
// answer or a host adjustment.
type ScoreUpdatePayload struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Points        int       `json:"points"` // points earned by this event, may be negative
	Score         int       `json:"score"`  // new cumulative score
	Streak        int       `json:"streak"`
	HotStreak     bool      `json:"hot_streak"`
}

// NextQuestionPayload announces the question now active. Option correctness is
// stripped before broadcast.
type NextQuestionPayload struct {
	QuestionIndex int             `json:"question_index"`
	Question      models.Question `json:"question"`
}

// SessionEndedPayload carries the final ranked leaderboard so late viewers can
// render results without re-querying the store.
type SessionEndedPayload struct {
	EndedAt     time.Time          `json:"ended_at"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardEntry is one ranked row of standings. Ranks are dense and 1-based.
type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Nickname      string    `json:"nickname"`
	Score         int       `json:"score"`
	Streak        int       `json:"streak"`
}

// AnswerSubmitPayload is a participant's answer to the active question.
type AnswerSubmitPayload struct {
	ParticipantID uuid.UUID  `json:"participant_id"`
	QuestionIndex int        `json:"question_index"`
	OptionID      *uuid.UUID `json:"option_id,omitempty"`
	FreeText      string     `json:"free_text,omitempty"`
	SubmittedAt   time.Time  `json:"submitted_at"`
}

// StateRequestPayload asks the host to republish the full game state. Sent on
// join and on every resubscribe, since the channel never redelivers.
type StateRequestPayload struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	RequestedAt   time.Time `json:"requested_at"`
}
