package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizlive/engine/internal/models"
)

// InsertParticipant records a newly joined client. Insert triggers fire the
// participants_changed notification the presence tracker listens on.
func (s *Store) InsertParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (id, session_id, token, nickname, avatar, score, streak, blocked, joined_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, FALSE, $6)`,
		p.ID, p.SessionID, p.Token, p.Nickname, p.Avatar, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant fetches one participant by id.
func (s *Store) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, token, nickname, avatar, score, streak, blocked, joined_at
		FROM participants
		WHERE id = $1`, id)

	var p models.Participant
	err := row.Scan(&p.ID, &p.SessionID, &p.Token, &p.Nickname, &p.Avatar,
		&p.Score, &p.Streak, &p.Blocked, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}

// GetParticipantByToken resolves a reconnecting client's stable identity token.
func (s *Store) GetParticipantByToken(ctx context.Context, sessionID uuid.UUID, token string) (*models.Participant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, token, nickname, avatar, score, streak, blocked, joined_at
		FROM participants
		WHERE session_id = $1 AND token = $2`, sessionID, token)

	var p models.Participant
	err := row.Scan(&p.ID, &p.SessionID, &p.Token, &p.Nickname, &p.Avatar,
		&p.Score, &p.Streak, &p.Blocked, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant by token: %w", err)
	}
	return &p, nil
}

// ListActiveParticipants returns the non-blocked roster ordered for the
// leaderboard: score descending, earlier join first on ties.
func (s *Store) ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, token, nickname, avatar, score, streak, blocked, joined_at
		FROM participants
		WHERE session_id = $1 AND NOT blocked
		ORDER BY score DESC, joined_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Token, &p.Nickname, &p.Avatar,
			&p.Score, &p.Streak, &p.Blocked, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return participants, nil
}

// AddScore applies a delta atomically at the store so simultaneous updates
// never lose writes. The floor at zero enforces that deductions cannot take a
// score negative. Returns the new cumulative score.
func (s *Store) AddScore(ctx context.Context, participantID uuid.UUID, delta int) (int, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE participants
		SET score = GREATEST(score + $2, 0)
		WHERE id = $1
		RETURNING score`, participantID, delta)

	var score int
	if err := row.Scan(&score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to add score: %w", err)
	}
	return score, nil
}

// UpdateStreak increments the consecutive-correct counter on a correct answer
// and resets it otherwise. Returns the new streak.
func (s *Store) UpdateStreak(ctx context.Context, participantID uuid.UUID, correct bool) (int, error) {
	query := `UPDATE participants SET streak = 0 WHERE id = $1 RETURNING streak`
	if correct {
		query = `UPDATE participants SET streak = streak + 1 WHERE id = $1 RETURNING streak`
	}

	var streak int
	if err := s.pool.QueryRow(ctx, query, participantID).Scan(&streak); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to update streak: %w", err)
	}
	return streak, nil
}

// BlockParticipant soft-removes a participant from an active session. The row
// stays so recorded responses keep a valid owner.
func (s *Store) BlockParticipant(ctx context.Context, participantID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `
		UPDATE participants SET blocked = TRUE WHERE id = $1`, participantID); err != nil {
		return fmt.Errorf("failed to block participant: %w", err)
	}
	return nil
}

// DeleteParticipant hard-deletes a participant. Only allowed while the session
// is still a draft; once launched, use BlockParticipant instead.
func (s *Store) DeleteParticipant(ctx context.Context, participantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM participants p
		USING sessions s
		WHERE p.id = $1 AND s.id = p.session_id AND s.status = $2`,
		participantID, models.SessionStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the participant is gone or the session has launched.
		if _, err := s.GetParticipant(ctx, participantID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrSessionActive
	}
	return nil
}
