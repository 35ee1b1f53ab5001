package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/channel"
	"github.com/quizlive/engine/internal/config"
	"github.com/quizlive/engine/internal/events"
	"github.com/quizlive/engine/internal/leaderboard"
	"github.com/quizlive/engine/internal/models"
	"github.com/quizlive/engine/internal/store"
)

// Store defines what the engine needs from the durable store. Writes are
// write-through: the live session never blocks on persistence, and a failed
// write is logged while the in-memory state proceeds.
type Store interface {
	InsertResponse(ctx context.Context, r *models.Response) (*models.Response, error)
	AddScore(ctx context.Context, participantID uuid.UUID, delta int) (int, error)
	UpdateStreak(ctx context.Context, participantID uuid.UUID, correct bool) (int, error)
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error
	ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
}

// Engine owns the authoritative GameState for one session and drives it from a
// single goroutine. Host operations arrive on the command queue, participant
// actions arrive on the session channel subscription, and time arrives from a
// clockwork ticker. Nothing else touches the state.
type Engine struct {
	session *models.Session
	state   *models.GameState
	channel channel.Channel
	store   Store
	board   *leaderboard.Aggregator
	scorer  *Scorer
	clock   clockwork.Clock
	cfg     config.Config

	cmdCh chan command
	done  chan struct{}

	// roster mirrors the durable participant rows so the hot path never reads
	// the store. It doubles as the in-memory fallback when a write fails.
	roster map[uuid.UUID]*rosterEntry

	questionOpenedAt time.Time
}

type rosterEntry struct {
	nickname string
	blocked  bool
	score    int
	streak   int
	joinedAt time.Time
}

// NewEngine creates the host engine for a session. Call Run to start it.
func NewEngine(session *models.Session, ch channel.Channel, st Store, clock clockwork.Clock, cfg config.Config) *Engine {
	return &Engine{
		session: session,
		state:   models.NewGameState(session.ID),
		channel: ch,
		store:   st,
		board:   leaderboard.NewAggregator(st),
		scorer:  NewScorer(cfg.Scoring),
		clock:   clock,
		cfg:     cfg,
		cmdCh:   make(chan command, 64),
		done:    make(chan struct{}),
	}
}

// Run launches the session and processes commands, participant events, and
// ticks until the session ends or the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	sub, err := e.channel.Subscribe(ctx, e.session.ID)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	e.loadRoster(ctx)

	// Durable fact: the session is live. A failed write must not block the
	// live experience.
	e.session.Status = models.SessionStatusActive
	if err := e.store.UpdateSessionStatus(ctx, e.session.ID, models.SessionStatusActive); err != nil {
		log.Error().Err(err).Str("session_id", e.session.ID.String()).Msg("failed to persist session launch")
	}

	e.state.UpdatedAt = e.clock.Now()
	e.broadcastState(ctx)

	ticker := e.clock.NewTicker(e.cfg.Timing.TickInterval)
	defer ticker.Stop()
	rebroadcast := e.clock.NewTicker(e.cfg.Timing.RebroadcastInterval)
	defer rebroadcast.Stop()

	log.Info().
		Str("session_id", e.session.ID.String()).
		Str("mode", string(e.session.Mode)).
		Int("questions", len(e.session.Questions)).
		Msg("session engine started")

	eventCh := sub.Events()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("session_id", e.session.ID.String()).Msg("engine shutting down")
			return nil
		case cmd := <-e.cmdCh:
			if stop := e.handleCommand(ctx, cmd); stop {
				return nil
			}
		case event, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			e.handleEvent(ctx, event)
		case <-ticker.Chan():
			if stop := e.handleTick(ctx); stop {
				return nil
			}
		case <-rebroadcast.Chan():
			e.broadcastState(ctx)
		}
	}
}

func (e *Engine) loadRoster(ctx context.Context) {
	e.roster = make(map[uuid.UUID]*rosterEntry)
	participants, err := e.store.ListActiveParticipants(ctx, e.session.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", e.session.ID.String()).Msg("failed to load roster")
		return
	}
	for _, p := range participants {
		e.roster[p.ID] = &rosterEntry{
			nickname: p.Nickname,
			blocked:  p.Blocked,
			score:    p.Score,
			streak:   p.Streak,
			joinedAt: p.JoinedAt,
		}
	}
}

// participant returns the roster entry, falling back to one store read for
// clients that joined after the engine started.
func (e *Engine) participant(ctx context.Context, id uuid.UUID) *rosterEntry {
	if entry, ok := e.roster[id]; ok {
		return entry
	}
	p, err := e.store.GetParticipant(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("participant_id", id.String()).Msg("failed to look up participant")
		}
		return nil
	}
	entry := &rosterEntry{
		nickname: p.Nickname,
		blocked:  p.Blocked,
		score:    p.Score,
		streak:   p.Streak,
		joinedAt: p.JoinedAt,
	}
	e.roster[id] = entry
	return entry
}

func (e *Engine) handleCommand(ctx context.Context, cmd command) bool {
	switch c := cmd.(type) {
	case openBuzzerCmd:
		e.openBuzzer(ctx)
	case closeBuzzerCmd:
		e.closeBuzzer(ctx)
	case endQuestionCmd:
		e.endQuestion(ctx)
	case nextQuestionCmd:
		e.nextQuestion(ctx)
	case revealAnswersCmd:
		e.revealAnswers(ctx)
	case showLeaderboardCmd:
		if e.transition(models.PhaseLeaderboard) {
			e.broadcastState(ctx)
		}
	case advanceQueueCmd:
		e.advanceQueue(ctx)
	case selectActiveCmd:
		e.selectActive(ctx, c.participantID)
	case judgeAnswerCmd:
		e.judgeAnswer(ctx, c)
	case startTimerCmd:
		e.startTimer(ctx)
	case pauseTimerCmd:
		e.pauseTimer(ctx)
	case resetTimerCmd:
		e.resetTimer(ctx)
	case endSessionCmd:
		e.endSession(ctx)
	case snapshotCmd:
		c.reply <- e.state.Clone()
	}
	return e.state.Phase == models.PhaseEnded
}

// transition applies a phase change when the transition table allows it. A
// request that does not match the current phase is a no-op: duplicate user
// actions and replayed messages fall through here silently.
func (e *Engine) transition(to models.Phase) bool {
	if !canTransition(e.session.Mode, e.state.Phase, to) {
		log.Debug().
			Str("session_id", e.session.ID.String()).
			Str("from", string(e.state.Phase)).
			Str("to", string(to)).
			Msg("ignoring invalid phase transition")
		return false
	}
	e.state.Phase = to
	e.state.UpdatedAt = e.clock.Now()
	return true
}

func (e *Engine) openBuzzer(ctx context.Context) {
	if e.session.Mode != models.SessionModeBuzzer {
		return
	}
	next := e.state.QuestionIndex + 1
	question := e.session.QuestionAt(next)
	if question == nil {
		// Advancing past the final question concludes the session.
		if e.state.Phase == models.PhaseScoring {
			e.lastQuestionConcluded(ctx)
		}
		return
	}
	if !e.transition(models.PhaseBuzzerOpen) {
		return
	}

	e.state.QuestionIndex = next
	e.state.BuzzerQueue = nil
	e.state.ActiveParticipantID = nil
	e.state.TimerTotalSec = question.TimeLimitSec
	e.state.TimerRemainingSec = question.TimeLimitSec
	e.state.TimerRunning = false
	e.questionOpenedAt = e.clock.Now()

	e.publish(ctx, events.EventTypeBuzzerOpen, events.BuzzerOpenPayload{
		QuestionIndex: next,
		TimeLimitSec:  question.TimeLimitSec,
		OpenedAt:      e.questionOpenedAt,
	})
}

func (e *Engine) closeBuzzer(ctx context.Context) {
	if e.state.Phase != models.PhaseBuzzerOpen || !e.transition(models.PhaseAnswering) {
		return
	}
	if e.state.ActiveParticipantID == nil && len(e.state.BuzzerQueue) > 0 {
		id := e.state.BuzzerQueue[0]
		e.state.ActiveParticipantID = &id
	}
	e.publish(ctx, events.EventTypeBuzzerClosed, events.BuzzerClosedPayload{
		QuestionIndex: e.state.QuestionIndex,
		Queue:         e.state.BuzzerQueue,
	})
	e.publishActive(ctx)
}

func (e *Engine) endQuestion(ctx context.Context) {
	if !e.transition(models.PhaseScoring) {
		return
	}
	e.state.TimerRunning = false
	e.state.ActiveParticipantID = nil
	e.broadcastState(ctx)
}

func (e *Engine) nextQuestion(ctx context.Context) {
	if e.session.Mode != models.SessionModeQuiz {
		return
	}
	next := e.state.QuestionIndex + 1
	question := e.session.QuestionAt(next)
	if question == nil {
		if e.state.Phase == models.PhaseRevealing || e.state.Phase == models.PhaseLeaderboard {
			e.lastQuestionConcluded(ctx)
		}
		return
	}
	if !e.transition(models.PhaseQuestionActive) {
		return
	}

	e.state.QuestionIndex = next
	e.state.TimerTotalSec = question.TimeLimitSec
	e.state.TimerRemainingSec = question.TimeLimitSec
	e.state.TimerRunning = true
	e.questionOpenedAt = e.clock.Now()

	e.publish(ctx, events.EventTypeNextQuestion, events.NextQuestionPayload{
		QuestionIndex: next,
		Question:      sanitizeQuestion(*question),
	})
	e.publishTimer(ctx, events.EventTypeTimerStart)
}

func (e *Engine) revealAnswers(ctx context.Context) {
	if !e.transition(models.PhaseRevealing) {
		return
	}
	e.state.TimerRunning = false
	e.broadcastState(ctx)
}

func (e *Engine) advanceQueue(ctx context.Context) {
	if e.state.Phase != models.PhaseAnswering {
		return
	}
	e.state.ActiveParticipantID = nextInQueue(e.state.BuzzerQueue, e.state.ActiveParticipantID)
	e.state.UpdatedAt = e.clock.Now()
	e.publishActive(ctx)
}

func (e *Engine) selectActive(ctx context.Context, participantID uuid.UUID) {
	if e.state.Phase != models.PhaseBuzzerOpen && e.state.Phase != models.PhaseAnswering {
		return
	}
	if !e.state.InQueue(participantID) {
		log.Debug().
			Str("participant_id", participantID.String()).
			Msg("ignoring selection of participant outside the buzzer queue")
		return
	}
	closing := e.state.Phase == models.PhaseBuzzerOpen
	if closing && !e.transition(models.PhaseAnswering) {
		return
	}
	e.state.ActiveParticipantID = &participantID
	e.state.UpdatedAt = e.clock.Now()
	if closing {
		// Selecting straight from the open window closes it, so mirrors
		// need the same closed notice a buzzer-close command produces.
		e.publish(ctx, events.EventTypeBuzzerClosed, events.BuzzerClosedPayload{
			QuestionIndex: e.state.QuestionIndex,
			Queue:         e.state.BuzzerQueue,
		})
	}
	e.publishActive(ctx)
}

func (e *Engine) judgeAnswer(ctx context.Context, cmd judgeAnswerCmd) {
	if e.state.Phase != models.PhaseAnswering {
		return
	}
	if e.state.ActiveParticipantID == nil || *e.state.ActiveParticipantID != cmd.participantID {
		log.Debug().
			Str("participant_id", cmd.participantID.String()).
			Msg("ignoring judgment for non-active participant")
		return
	}

	points := e.scorer.Points(cmd.correct, e.state.TimerRemainingSec, e.state.TimerTotalSec)
	if !cmd.correct {
		points = -cmd.deduction
	}

	question := e.session.QuestionAt(e.state.QuestionIndex)
	if question != nil {
		dup := e.recordResponse(ctx, &models.Response{
			ID:            uuid.New(),
			SessionID:     e.session.ID,
			ParticipantID: cmd.participantID,
			QuestionID:    question.ID,
			LatencyMs:     int(e.clock.Since(e.questionOpenedAt) / time.Millisecond),
			Correct:       cmd.correct,
			Points:        points,
			AnsweredAt:    e.clock.Now(),
		})
		if dup {
			// Already judged for this question: the first outcome stands.
			return
		}
	}

	e.applyScore(ctx, cmd.participantID, points, cmd.correct)

	if cmd.correct {
		// Question resolved.
		e.state.ActiveParticipantID = nil
		if e.transition(models.PhaseScoring) {
			e.broadcastState(ctx)
		}
		return
	}
	// Wrong answer: pass the privilege down the queue.
	e.state.ActiveParticipantID = nextInQueue(e.state.BuzzerQueue, e.state.ActiveParticipantID)
	e.publishActive(ctx)
}

func (e *Engine) startTimer(ctx context.Context) {
	if !e.timedPhase() || e.state.TimerRemainingSec <= 0 || e.state.TimerRunning {
		return
	}
	e.state.TimerRunning = true
	e.state.UpdatedAt = e.clock.Now()
	e.publishTimer(ctx, events.EventTypeTimerStart)
}

func (e *Engine) pauseTimer(ctx context.Context) {
	if !e.state.TimerRunning {
		return
	}
	e.state.TimerRunning = false
	e.state.UpdatedAt = e.clock.Now()
	e.publishTimer(ctx, events.EventTypeTimerPause)
}

func (e *Engine) resetTimer(ctx context.Context) {
	if !e.timedPhase() {
		return
	}
	e.state.TimerRemainingSec = e.state.TimerTotalSec
	e.state.UpdatedAt = e.clock.Now()
	e.publishTimer(ctx, events.EventTypeTimerTick)
}

func (e *Engine) timedPhase() bool {
	switch e.state.Phase {
	case models.PhaseBuzzerOpen, models.PhaseAnswering, models.PhaseQuestionActive:
		return true
	default:
		return false
	}
}

// handleTick runs the authoritative countdown. When it reaches zero the host,
// and only the host, decides the phase moves on.
func (e *Engine) handleTick(ctx context.Context) bool {
	if !e.state.TimerRunning || !e.timedPhase() {
		return false
	}

	e.state.TimerRemainingSec--
	if e.state.TimerRemainingSec < 0 {
		e.state.TimerRemainingSec = 0
	}
	e.state.UpdatedAt = e.clock.Now()
	e.publishTimer(ctx, events.EventTypeTimerTick)

	if e.state.TimerRemainingSec > 0 {
		return false
	}

	e.state.TimerRunning = false
	next, ok := expiryPhase(e.session.Mode, e.state.Phase)
	if !ok || !e.transition(next) {
		return false
	}
	e.state.ActiveParticipantID = nil
	e.broadcastState(ctx)
	return false
}

// lastQuestionConcluded ends the session once the final question has been
// scored or revealed; the host can also end it explicitly at any time.
func (e *Engine) lastQuestionConcluded(ctx context.Context) bool {
	if e.session.QuestionAt(e.state.QuestionIndex+1) != nil {
		return false
	}
	log.Info().Str("session_id", e.session.ID.String()).Msg("last question concluded")
	e.endSession(ctx)
	return true
}

func (e *Engine) endSession(ctx context.Context) {
	if e.state.Phase == models.PhaseEnded {
		return
	}
	e.state.Phase = models.PhaseEnded
	e.state.TimerRunning = false
	e.state.ActiveParticipantID = nil
	e.state.UpdatedAt = e.clock.Now()

	standings, err := e.board.Recompute(ctx, e.session.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", e.session.ID.String()).Msg("failed to read final standings, using in-memory scores")
		standings = leaderboard.Compute(e.rosterParticipants())
	}

	e.session.Status = models.SessionStatusEnded
	if err := e.store.UpdateSessionStatus(ctx, e.session.ID, models.SessionStatusEnded); err != nil {
		log.Error().Err(err).Str("session_id", e.session.ID.String()).Msg("failed to persist session end")
	}

	e.publish(ctx, events.EventTypeSessionEnded, events.SessionEndedPayload{
		EndedAt:     e.clock.Now(),
		Leaderboard: standings,
	})

	log.Info().Str("session_id", e.session.ID.String()).Msg("session ended")
}

func (e *Engine) rosterParticipants() []models.Participant {
	participants := make([]models.Participant, 0, len(e.roster))
	for id, entry := range e.roster {
		if entry.blocked {
			continue
		}
		participants = append(participants, models.Participant{
			ID:       id,
			Nickname: entry.nickname,
			Score:    entry.score,
			Streak:   entry.streak,
			JoinedAt: entry.joinedAt,
		})
	}
	return participants
}

// handleEvent folds a participant-originated message into state. Anything the
// host itself broadcast loops back on the subscription and is ignored here.
func (e *Engine) handleEvent(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.EventTypeBuzzerPress:
		payload, err := events.ParsePayload(event)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed buzzer press")
			return
		}
		e.handleBuzzerPress(ctx, payload.(events.BuzzerPressPayload))
	case events.EventTypeAnswerSubmit:
		payload, err := events.ParsePayload(event)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed answer")
			return
		}
		e.handleAnswerSubmit(ctx, payload.(events.AnswerSubmitPayload))
	case events.EventTypeStateRequest:
		// Late joiner or reconnect: republish the full authoritative state.
		e.broadcastState(ctx)
	default:
		// Host-originated broadcast echoed back; nothing to do.
	}
}

// handleBuzzerPress appends a claim in host-receipt order. Client timestamps
// are not trusted and never consulted: first received by the host wins.
func (e *Engine) handleBuzzerPress(ctx context.Context, press events.BuzzerPressPayload) {
	if e.state.Phase != models.PhaseBuzzerOpen {
		log.Debug().
			Str("participant_id", press.ParticipantID.String()).
			Str("phase", string(e.state.Phase)).
			Msg("dropping stale buzzer press")
		return
	}
	if e.state.InQueue(press.ParticipantID) {
		log.Debug().
			Str("participant_id", press.ParticipantID.String()).
			Msg("dropping duplicate buzzer press")
		return
	}
	entry := e.participant(ctx, press.ParticipantID)
	if entry == nil || entry.blocked {
		log.Warn().
			Str("participant_id", press.ParticipantID.String()).
			Msg("dropping buzzer press from unknown or blocked participant")
		return
	}

	e.state.BuzzerQueue = append(e.state.BuzzerQueue, press.ParticipantID)
	e.state.UpdatedAt = e.clock.Now()
	e.publishActive(ctx)
}

func (e *Engine) handleAnswerSubmit(ctx context.Context, answer events.AnswerSubmitPayload) {
	if e.state.Phase != models.PhaseQuestionActive || answer.QuestionIndex != e.state.QuestionIndex {
		log.Debug().
			Str("participant_id", answer.ParticipantID.String()).
			Int("question_index", answer.QuestionIndex).
			Msg("dropping stale answer")
		return
	}
	question := e.session.QuestionAt(e.state.QuestionIndex)
	if question == nil {
		return
	}
	entry := e.participant(ctx, answer.ParticipantID)
	if entry == nil || entry.blocked {
		log.Warn().
			Str("participant_id", answer.ParticipantID.String()).
			Msg("dropping answer from unknown or blocked participant")
		return
	}

	correct := false
	if co := question.CorrectOption(); co != nil && answer.OptionID != nil {
		correct = *answer.OptionID == co.ID
	}
	points := e.scorer.Points(correct, e.state.TimerRemainingSec, e.state.TimerTotalSec)

	response := &models.Response{
		ID:            uuid.New(),
		SessionID:     e.session.ID,
		ParticipantID: answer.ParticipantID,
		QuestionID:    question.ID,
		OptionID:      answer.OptionID,
		FreeText:      answer.FreeText,
		LatencyMs:     int(e.clock.Since(e.questionOpenedAt) / time.Millisecond),
		Correct:       correct,
		Points:        points,
		AnsweredAt:    e.clock.Now(),
	}
	if dup := e.recordResponse(ctx, response); dup {
		// Already answered: the original outcome stands, score stays put.
		return
	}

	e.applyScore(ctx, answer.ParticipantID, points, correct)
}

// recordResponse write-throughs a response. Returns true when the pair was
// already recorded, in which case nothing further may be applied.
func (e *Engine) recordResponse(ctx context.Context, response *models.Response) bool {
	_, err := e.store.InsertResponse(ctx, response)
	if errors.Is(err, store.ErrDuplicateResponse) {
		log.Debug().
			Str("participant_id", response.ParticipantID.String()).
			Str("question_id", response.QuestionID.String()).
			Msg("duplicate response, keeping original")
		return true
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to persist response, proceeding in memory")
	}
	return false
}

// applyScore updates durable score and streak, falling back to the in-memory
// roster when the store write fails, and broadcasts the new totals.
func (e *Engine) applyScore(ctx context.Context, participantID uuid.UUID, points int, correct bool) {
	entry := e.roster[participantID]
	if entry == nil {
		return
	}

	score, err := e.store.AddScore(ctx, participantID, points)
	if err != nil {
		log.Error().Err(err).Str("participant_id", participantID.String()).Msg("failed to persist score, proceeding in memory")
		score = entry.score + points
		if score < 0 {
			score = 0
		}
	}
	entry.score = score

	streak, err := e.store.UpdateStreak(ctx, participantID, correct)
	if err != nil {
		log.Error().Err(err).Str("participant_id", participantID.String()).Msg("failed to persist streak, proceeding in memory")
		if correct {
			streak = entry.streak + 1
		} else {
			streak = 0
		}
	}
	entry.streak = streak

	e.publish(ctx, events.EventTypeScoreUpdate, events.ScoreUpdatePayload{
		ParticipantID: participantID,
		Points:        points,
		Score:         score,
		Streak:        streak,
		HotStreak:     e.scorer.HotStreak(streak),
	})
}

// broadcastState publishes the full authoritative snapshot. Every phase change
// sends one, the rebroadcast ticker repeats it for stragglers, and any client
// can request one explicitly.
func (e *Engine) broadcastState(ctx context.Context) {
	e.publish(ctx, events.EventTypeGameState, events.GameStatePayload{State: *e.state.Clone()})
}

func (e *Engine) publishActive(ctx context.Context) {
	e.publish(ctx, events.EventTypeActiveParticipant, events.ActiveParticipantPayload{
		ParticipantID: e.state.ActiveParticipantID,
		Queue:         e.state.BuzzerQueue,
	})
}

func (e *Engine) publishTimer(ctx context.Context, eventType events.EventType) {
	e.publish(ctx, eventType, events.TimerPayload{
		QuestionIndex: e.state.QuestionIndex,
		RemainingSec:  e.state.TimerRemainingSec,
		TotalSec:      e.state.TimerTotalSec,
		Running:       e.state.TimerRunning,
	})
}

// publish fires an event at the session channel. A failed publish keeps local
// authoritative state; the periodic rebroadcast recovers stragglers, so no
// transition is ever lost to one dropped broadcast.
func (e *Engine) publish(ctx context.Context, eventType events.EventType, payload any) {
	if err := e.channel.Publish(ctx, e.session.ID, eventType, payload); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", e.session.ID.String()).
			Str("event_type", string(eventType)).
			Msg("publish failed, relying on rebroadcast")
	}
}

// nextInQueue returns the queue member after current, nil when exhausted. The
// queue itself is never reordered once built.
func nextInQueue(queue []uuid.UUID, current *uuid.UUID) *uuid.UUID {
	if len(queue) == 0 {
		return nil
	}
	if current == nil {
		id := queue[0]
		return &id
	}
	for i, id := range queue {
		if id == *current && i+1 < len(queue) {
			next := queue[i+1]
			return &next
		}
	}
	return nil
}

// sanitizeQuestion strips correctness flags before a question goes on the wire.
func sanitizeQuestion(q models.Question) models.Question {
	options := make([]models.Option, len(q.Options))
	for i, o := range q.Options {
		o.Correct = false
		options[i] = o
	}
	q.Options = options
	return q
}
