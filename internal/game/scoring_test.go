package game

import (
	"testing"

	"github.com/quizlive/engine/internal/config"
)

func TestScorerPoints(t *testing.T) {
	s := NewScorer(config.Default().Scoring)

	tests := []struct {
		name      string
		correct   bool
		remaining int
		total     int
		want      int
	}{
		{"incorrect earns nothing", false, 30, 30, 0},
		{"incorrect earns nothing even instantly", false, 29, 30, 0},
		{"bonus scales with remaining time", true, 18, 30, 160},
		{"instant answer earns full bonus", true, 30, 30, 200},
		{"last second earns partial bonus", true, 1, 30, 103},
		{"expired timer earns base only", true, 0, 30, 100},
		{"untimed question earns base only", true, 10, 0, 100},
		{"bonus rounds down", true, 10, 30, 133},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Points(tt.correct, tt.remaining, tt.total); got != tt.want {
				t.Fatalf("Points(%v, %d, %d) = %d, want %d", tt.correct, tt.remaining, tt.total, got, tt.want)
			}
		})
	}
}

func TestScorerPointsCappedAtMaxBonus(t *testing.T) {
	s := NewScorer(config.Scoring{BasePoints: 100, MaxTimeBonus: 50, StreakThreshold: 3})

	// Remaining exceeding total cannot push the bonus past its cap.
	if got := s.Points(true, 60, 30); got != 150 {
		t.Fatalf("Points(true, 60, 30) = %d, want 150", got)
	}
}

func TestScorerHotStreak(t *testing.T) {
	s := NewScorer(config.Default().Scoring)

	for streak, want := range map[int]bool{0: false, 1: false, 2: false, 3: true, 7: true} {
		if got := s.HotStreak(streak); got != want {
			t.Fatalf("HotStreak(%d) = %v, want %v", streak, got, want)
		}
	}
}
