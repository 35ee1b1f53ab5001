package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/events"
	"github.com/quizlive/engine/internal/models"
)

// ParticipantLister defines what the aggregator needs from the store.
type ParticipantLister interface {
	ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
}

// Aggregator derives rank-ordered standings from scores. It recomputes from a
// full roster read on every score-affecting event rather than maintaining
// ranks incrementally; sessions are small enough that the recomputation cost
// buys freedom from incremental-update bugs.
type Aggregator struct {
	store ParticipantLister
}

// NewAggregator creates a leaderboard aggregator backed by the given store.
func NewAggregator(store ParticipantLister) *Aggregator {
	return &Aggregator{store: store}
}

// Recompute re-reads the non-blocked roster and returns fresh standings.
func (a *Aggregator) Recompute(ctx context.Context, sessionID uuid.UUID) ([]events.LeaderboardEntry, error) {
	participants, err := a.store.ListActiveParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute leaderboard: %w", err)
	}
	return Compute(participants), nil
}

// Compute sorts participants into standings: score descending, earlier join
// time first on ties, dense 1-based ranks.
func Compute(participants []models.Participant) []events.LeaderboardEntry {
	sorted := make([]models.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})

	entries := make([]events.LeaderboardEntry, 0, len(sorted))
	rank := 0
	lastScore := -1
	for i, p := range sorted {
		if i == 0 || p.Score != lastScore {
			rank++
			lastScore = p.Score
		}
		entries = append(entries, events.LeaderboardEntry{
			Rank:          rank,
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			Score:         p.Score,
			Streak:        p.Streak,
		})
	}
	return entries
}
