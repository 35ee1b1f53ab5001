package game

import "github.com/quizlive/engine/internal/models"

// Phase transition tables, one per session mode. Transitions are strictly
// host-initiated; a request that does not match the current phase is a no-op,
// which guards against duplicate user actions and replayed messages.

var buzzerTransitions = map[models.Phase][]models.Phase{
	models.PhaseWaiting:    {models.PhaseBuzzerOpen, models.PhaseEnded},
	models.PhaseBuzzerOpen: {models.PhaseAnswering, models.PhaseScoring, models.PhaseEnded},
	models.PhaseAnswering:  {models.PhaseScoring, models.PhaseBuzzerOpen, models.PhaseEnded},
	models.PhaseScoring:    {models.PhaseBuzzerOpen, models.PhaseEnded},
}

var quizTransitions = map[models.Phase][]models.Phase{
	models.PhaseWaiting:        {models.PhaseQuestionActive, models.PhaseEnded},
	models.PhaseQuestionActive: {models.PhaseRevealing, models.PhaseEnded},
	models.PhaseRevealing:      {models.PhaseLeaderboard, models.PhaseQuestionActive, models.PhaseEnded},
	models.PhaseLeaderboard:    {models.PhaseQuestionActive, models.PhaseEnded},
}

// canTransition reports whether moving from -> to is legal for the mode.
func canTransition(mode models.SessionMode, from, to models.Phase) bool {
	table := buzzerTransitions
	if mode == models.SessionModeQuiz {
		table = quizTransitions
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// expiryPhase is where the host moves the session when its countdown reaches
// zero. Only the host makes this call; participants never declare time-up.
func expiryPhase(mode models.SessionMode, current models.Phase) (models.Phase, bool) {
	switch {
	case mode == models.SessionModeBuzzer && (current == models.PhaseBuzzerOpen || current == models.PhaseAnswering):
		return models.PhaseScoring, true
	case mode == models.SessionModeQuiz && current == models.PhaseQuestionActive:
		return models.PhaseRevealing, true
	default:
		return current, false
	}
}
