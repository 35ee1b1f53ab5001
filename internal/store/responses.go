package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quizlive/engine/internal/models"
)

// InsertResponse records a participant's answer. The unique index on
// (participant_id, question_id) makes re-delivery safe: a second submission
// returns ErrDuplicateResponse together with the originally stored response,
// which is the recorded outcome the caller should report.
func (s *Store) InsertResponse(ctx context.Context, r *models.Response) (*models.Response, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO responses (id, session_id, participant_id, question_id, option_id,
			free_text, latency_ms, correct, points, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (participant_id, question_id) DO NOTHING`,
		r.ID, r.SessionID, r.ParticipantID, r.QuestionID, r.OptionID,
		r.FreeText, r.LatencyMs, r.Correct, r.Points, r.AnsweredAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Raced another insert for the same pair; fall through to the
			// duplicate path below.
			tag = pgconn.CommandTag{}
		} else {
			return nil, fmt.Errorf("failed to insert response: %w", err)
		}
	}

	if tag.RowsAffected() == 0 {
		original, err := s.GetResponse(ctx, r.ParticipantID, r.QuestionID)
		if err != nil {
			return nil, err
		}
		return original, ErrDuplicateResponse
	}
	return r, nil
}

// GetResponse fetches the recorded response for a (participant, question) pair.
func (s *Store) GetResponse(ctx context.Context, participantID, questionID uuid.UUID) (*models.Response, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, participant_id, question_id, option_id,
			free_text, latency_ms, correct, points, answered_at
		FROM responses
		WHERE participant_id = $1 AND question_id = $2`, participantID, questionID)

	var r models.Response
	err := row.Scan(&r.ID, &r.SessionID, &r.ParticipantID, &r.QuestionID, &r.OptionID,
		&r.FreeText, &r.LatencyMs, &r.Correct, &r.Points, &r.AnsweredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return &r, nil
}

// ListQuestionResponses returns all recorded responses for one question.
func (s *Store) ListQuestionResponses(ctx context.Context, questionID uuid.UUID) ([]models.Response, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, participant_id, question_id, option_id,
			free_text, latency_ms, correct, points, answered_at
		FROM responses
		WHERE question_id = $1
		ORDER BY answered_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ParticipantID, &r.QuestionID, &r.OptionID,
			&r.FreeText, &r.LatencyMs, &r.Correct, &r.Points, &r.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read responses: %w", err)
	}
	return responses, nil
}
