package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/channel"
	"github.com/quizlive/engine/internal/events"
	"github.com/quizlive/engine/internal/models"
)

// Mirror is a participant's local copy of the authoritative GameState, rebuilt
// purely by folding received events. It is never trusted for decisions the
// host owns: expiry, phase changes, and scores all come from broadcasts.
type Mirror struct {
	mu     sync.RWMutex
	state  models.GameState
	synced bool
}

// NewMirror returns an unsynced mirror; it reports synced once a full
// game-state snapshot has been applied.
func NewMirror(sessionID uuid.UUID) *Mirror {
	return &Mirror{state: *models.NewGameState(sessionID)}
}

// Synced reports whether a full snapshot has been absorbed since creation.
func (m *Mirror) Synced() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.synced
}

// State returns a copy of the mirrored state.
func (m *Mirror) State() models.GameState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.state.Clone()
}

// Apply folds one received event into the mirror. Unknown or malformed events
// are rejected at this boundary; duplicates are harmless because every fold is
// idempotent with respect to the authoritative values it carries.
func (m *Mirror) Apply(event events.Event) error {
	payload, err := events.ParsePayload(event)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch p := payload.(type) {
	case events.GameStatePayload:
		m.state = *p.State.Clone()
		m.synced = true
	case events.BuzzerOpenPayload:
		m.state.Phase = models.PhaseBuzzerOpen
		m.state.QuestionIndex = p.QuestionIndex
		m.state.TimerTotalSec = p.TimeLimitSec
		m.state.TimerRemainingSec = p.TimeLimitSec
		m.state.TimerRunning = false
		m.state.BuzzerQueue = nil
		m.state.ActiveParticipantID = nil
	case events.BuzzerClosedPayload:
		m.state.Phase = models.PhaseAnswering
		m.state.BuzzerQueue = p.Queue
	case events.ActiveParticipantPayload:
		m.state.ActiveParticipantID = p.ParticipantID
		m.state.BuzzerQueue = p.Queue
	case events.TimerPayload:
		// Local drift is bounded to one broadcast interval: every authoritative
		// value overwrites the render countdown.
		m.state.TimerRemainingSec = p.RemainingSec
		m.state.TimerTotalSec = p.TotalSec
		m.state.TimerRunning = p.Running
	case events.NextQuestionPayload:
		m.state.Phase = models.PhaseQuestionActive
		m.state.QuestionIndex = p.QuestionIndex
		m.state.TimerTotalSec = p.Question.TimeLimitSec
		m.state.TimerRemainingSec = p.Question.TimeLimitSec
		m.state.TimerRunning = true
		m.state.BuzzerQueue = nil
		m.state.ActiveParticipantID = nil
	case events.SessionEndedPayload:
		m.state.Phase = models.PhaseEnded
		m.state.TimerRunning = false
		m.state.ActiveParticipantID = nil
	default:
		// Peer-originated message (buzzer-press, answer-submit, state-request);
		// only the host folds those.
	}
	return nil
}

// Tick advances the local render countdown by one second. Purely cosmetic:
// the next authoritative timer value resets it.
func (m *Mirror) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.TimerRunning && m.state.TimerRemainingSec > 0 {
		m.state.TimerRemainingSec--
	}
}

// Follower runs a participant client's event loop: subscribe, request a full
// snapshot, fold broadcasts into the mirror, and tick the render countdown.
type Follower struct {
	mirror        *Mirror
	channel       channel.Channel
	sessionID     uuid.UUID
	participantID uuid.UUID
	clock         clockwork.Clock
}

// NewFollower creates a follower for one participant in one session.
func NewFollower(ch channel.Channel, sessionID, participantID uuid.UUID, clock clockwork.Clock) *Follower {
	return &Follower{
		mirror:        NewMirror(sessionID),
		channel:       ch,
		sessionID:     sessionID,
		participantID: participantID,
		clock:         clock,
	}
}

// Mirror exposes the follower's local state copy.
func (f *Follower) Mirror() *Mirror {
	return f.mirror
}

// Run subscribes and processes events until the context is cancelled. On every
// (re)subscribe it requests a full snapshot rather than assuming it missed
// nothing: the channel never redelivers.
func (f *Follower) Run(ctx context.Context) error {
	sub, err := f.channel.Subscribe(ctx, f.sessionID)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	if err := f.channel.Publish(ctx, f.sessionID, events.EventTypeStateRequest, events.StateRequestPayload{
		ParticipantID: f.participantID,
		RequestedAt:   f.clock.Now(),
	}); err != nil {
		log.Warn().Err(err).Str("session_id", f.sessionID.String()).Msg("state request failed, waiting for rebroadcast")
	}

	ticker := f.clock.NewTicker(time.Second)
	defer ticker.Stop()

	eventCh := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}
			if err := f.mirror.Apply(event); err != nil {
				log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("dropping malformed event")
			}
		case <-ticker.Chan():
			f.mirror.Tick()
		}
	}
}

// PressBuzzer publishes a buzzer claim for the current question. The host
// orders claims by receipt; the timestamp here is informational.
func (f *Follower) PressBuzzer(ctx context.Context) error {
	state := f.mirror.State()
	return f.channel.Publish(ctx, f.sessionID, events.EventTypeBuzzerPress, events.BuzzerPressPayload{
		ParticipantID: f.participantID,
		QuestionIndex: state.QuestionIndex,
		PressedAt:     f.clock.Now(),
	})
}

// SubmitAnswer publishes an answer for the active question.
func (f *Follower) SubmitAnswer(ctx context.Context, optionID *uuid.UUID, freeText string) error {
	state := f.mirror.State()
	return f.channel.Publish(ctx, f.sessionID, events.EventTypeAnswerSubmit, events.AnswerSubmitPayload{
		ParticipantID: f.participantID,
		QuestionIndex: state.QuestionIndex,
		OptionID:      optionID,
		FreeText:      freeText,
		SubmittedAt:   f.clock.Now(),
	})
}
