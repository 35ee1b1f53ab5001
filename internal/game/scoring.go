package game

import "github.com/quizlive/engine/internal/config"

// Scorer computes points and streak signals from scoring config.
type Scorer struct {
	cfg config.Scoring
}

// NewScorer creates a scorer with the given tunables.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Points returns the points earned for an answer: zero if incorrect, otherwise
// base plus a linear time bonus of floor(remaining/total * maxBonus), capped at
// maxBonus. Faster correct answers earn more.
func (s *Scorer) Points(correct bool, remainingSec, totalSec int) int {
	if !correct {
		return 0
	}
	if totalSec <= 0 || remainingSec <= 0 {
		return s.cfg.BasePoints
	}

	bonus := remainingSec * s.cfg.MaxTimeBonus / totalSec
	if bonus > s.cfg.MaxTimeBonus {
		bonus = s.cfg.MaxTimeBonus
	}
	return s.cfg.BasePoints + bonus
}

// HotStreak reports whether a streak qualifies for the hot-streak UI signal.
// The signal never changes point totals.
func (s *Scorer) HotStreak(streak int) bool {
	return streak >= s.cfg.StreakThreshold
}
