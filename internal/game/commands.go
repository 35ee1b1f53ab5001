package game

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/models"
)

// ErrEngineClosed is returned by host operations after the engine loop exits.
var ErrEngineClosed = errors.New("engine closed")

// Host operations are delivered to the engine loop as commands on a single
// inbound queue. The loop goroutine is the only writer of GameState, so there
// is never cross-goroutine mutation.
type command interface {
	isCommand()
}

type openBuzzerCmd struct{}
type closeBuzzerCmd struct{}
type endQuestionCmd struct{}
type nextQuestionCmd struct{}
type revealAnswersCmd struct{}
type showLeaderboardCmd struct{}
type advanceQueueCmd struct{}
type selectActiveCmd struct{ participantID uuid.UUID }
type judgeAnswerCmd struct {
	participantID uuid.UUID
	correct       bool
	deduction     int
}
type startTimerCmd struct{}
type pauseTimerCmd struct{}
type resetTimerCmd struct{}
type endSessionCmd struct{}
type snapshotCmd struct{ reply chan *models.GameState }

func (openBuzzerCmd) isCommand()      {}
func (closeBuzzerCmd) isCommand()     {}
func (endQuestionCmd) isCommand()     {}
func (nextQuestionCmd) isCommand()    {}
func (revealAnswersCmd) isCommand()   {}
func (showLeaderboardCmd) isCommand() {}
func (advanceQueueCmd) isCommand()    {}
func (selectActiveCmd) isCommand()    {}
func (judgeAnswerCmd) isCommand()     {}
func (startTimerCmd) isCommand()      {}
func (pauseTimerCmd) isCommand()      {}
func (resetTimerCmd) isCommand()      {}
func (endSessionCmd) isCommand()      {}
func (snapshotCmd) isCommand()        {}

// OpenBuzzer advances to the next question and opens its buzzer window.
func (e *Engine) OpenBuzzer(ctx context.Context) error {
	return e.send(ctx, openBuzzerCmd{})
}

// CloseBuzzer closes the buzzer window and moves to answering with the queue
// head active.
func (e *Engine) CloseBuzzer(ctx context.Context) error {
	return e.send(ctx, closeBuzzerCmd{})
}

// EndQuestion concludes the current question and moves to scoring. A no-op
// outside an open question.
func (e *Engine) EndQuestion(ctx context.Context) error {
	return e.send(ctx, endQuestionCmd{})
}

// NextQuestion activates the next question in quiz mode.
func (e *Engine) NextQuestion(ctx context.Context) error {
	return e.send(ctx, nextQuestionCmd{})
}

// RevealAnswers moves a quiz question into the revealing phase.
func (e *Engine) RevealAnswers(ctx context.Context) error {
	return e.send(ctx, revealAnswersCmd{})
}

// ShowLeaderboard moves from revealing to the leaderboard phase.
func (e *Engine) ShowLeaderboard(ctx context.Context) error {
	return e.send(ctx, showLeaderboardCmd{})
}

// AdvanceQueue hands the answering privilege to the next queue member.
func (e *Engine) AdvanceQueue(ctx context.Context) error {
	return e.send(ctx, advanceQueueCmd{})
}

// SelectActive hands the answering privilege to an arbitrary queue member.
func (e *Engine) SelectActive(ctx context.Context, participantID uuid.UUID) error {
	return e.send(ctx, selectActiveCmd{participantID: participantID})
}

// JudgeAnswer scores the active participant's spoken answer in buzzer mode.
// An incorrect judgment deducts the given penalty, clamped at zero.
func (e *Engine) JudgeAnswer(ctx context.Context, participantID uuid.UUID, correct bool, deduction int) error {
	return e.send(ctx, judgeAnswerCmd{participantID: participantID, correct: correct, deduction: deduction})
}

// StartTimer starts or resumes the authoritative countdown.
func (e *Engine) StartTimer(ctx context.Context) error {
	return e.send(ctx, startTimerCmd{})
}

// PauseTimer pauses the authoritative countdown.
func (e *Engine) PauseTimer(ctx context.Context) error {
	return e.send(ctx, pauseTimerCmd{})
}

// ResetTimer restores the countdown to the question's full time limit.
func (e *Engine) ResetTimer(ctx context.Context) error {
	return e.send(ctx, resetTimerCmd{})
}

// EndSession ends the session, broadcasting the final ranked leaderboard.
func (e *Engine) EndSession(ctx context.Context) error {
	return e.send(ctx, endSessionCmd{})
}

// Snapshot returns a copy of the current authoritative state.
func (e *Engine) Snapshot(ctx context.Context) (*models.GameState, error) {
	reply := make(chan *models.GameState, 1)
	if err := e.send(ctx, snapshotCmd{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case state := <-reply:
		return state, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, ErrEngineClosed
	}
}

func (e *Engine) send(ctx context.Context, cmd command) error {
	select {
	case e.cmdCh <- cmd:
		return nil
	case <-e.done:
		return ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
