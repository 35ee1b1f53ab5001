package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Phase is the current named state of the game machine.
type Phase string

// Buzzer mode phases.
const (
	PhaseWaiting    Phase = "WAITING"
	PhaseBuzzerOpen Phase = "BUZZER_OPEN"
	PhaseAnswering  Phase = "ANSWERING"
	PhaseScoring    Phase = "SCORING"
	PhaseEnded      Phase = "ENDED"
)

// Quiz mode phases (PhaseWaiting and PhaseEnded are shared).
const (
	PhaseQuestionActive Phase = "QUESTION_ACTIVE"
	PhaseRevealing      Phase = "REVEALING"
	PhaseLeaderboard    Phase = "LEADERBOARD"
)

// GameState is the authoritative in-memory structure the host holds for one
// session. It is never durably persisted: every (re)connecting client rebuilds
// it from the latest broadcast or an explicit snapshot request.
type GameState struct {
	SessionID           uuid.UUID   `json:"session_id"`
	Phase               Phase       `json:"phase"`
	QuestionIndex       int         `json:"question_index"`
	TimerRemainingSec   int         `json:"timer_remaining_sec"`
	TimerTotalSec       int         `json:"timer_total_sec"`
	TimerRunning        bool        `json:"timer_running"`
	BuzzerQueue         []uuid.UUID `json:"buzzer_queue"` // host-receipt order, never reordered
	ActiveParticipantID *uuid.UUID  `json:"active_participant_id,omitempty"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewGameState returns the initial waiting state for a session.
func NewGameState(sessionID uuid.UUID) *GameState {
	return &GameState{
		SessionID:     sessionID,
		Phase:         PhaseWaiting,
		QuestionIndex: -1, // no question active yet
	}
}

// InQueue reports whether the participant already claimed the current buzzer window.
func (g *GameState) InQueue(participantID uuid.UUID) bool {
	return slices.Contains(g.BuzzerQueue, participantID)
}

// Clone returns a deep copy safe to hand to another goroutine or marshal later.
func (g *GameState) Clone() *GameState {
	cp := *g
	cp.BuzzerQueue = slices.Clone(g.BuzzerQueue)
	if g.ActiveParticipantID != nil {
		id := *g.ActiveParticipantID
		cp.ActiveParticipantID = &id
	}
	return &cp
}
