package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/engine/internal/models"
)

// Store is the relational system of record for sessions, participants, and
// responses. It is queried on demand, never on the synchronization hot path.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for the given DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetSessionByCode looks up a session by its human-entry join code.
func (s *Store) GetSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, host_id, code, mode, status, started_at, ended_at, created_at
		FROM sessions
		WHERE code = $1`, code)

	var session models.Session
	err := row.Scan(&session.ID, &session.HostID, &session.Code, &session.Mode,
		&session.Status, &session.StartedAt, &session.EndedAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by code: %w", err)
	}
	return &session, nil
}

// GetSession fetches a session with its ordered question list.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, host_id, code, mode, status, started_at, ended_at, created_at
		FROM sessions
		WHERE id = $1`, id)

	var session models.Session
	err := row.Scan(&session.ID, &session.HostID, &session.Code, &session.Mode,
		&session.Status, &session.StartedAt, &session.EndedAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	questions, err := s.GetSessionQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Questions = questions
	return &session, nil
}

// GetSessionQuestions returns a session's questions with options, in order.
func (s *Store) GetSessionQuestions(ctx context.Context, sessionID uuid.UUID) ([]models.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, index, text, time_limit_sec
		FROM questions
		WHERE session_id = $1
		ORDER BY index ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Index, &q.Text, &q.TimeLimitSec); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	for i := range questions {
		options, err := s.getQuestionOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = options
	}
	return questions, nil
}

func (s *Store) getQuestionOptions(ctx context.Context, questionID uuid.UUID) ([]models.Option, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, question_id, text, correct
		FROM options
		WHERE question_id = $1
		ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Correct); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// UpdateSessionStatus transitions the durable session status and stamps the
// matching lifecycle timestamp.
func (s *Store) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	now := time.Now().UTC()
	var tag string
	switch status {
	case models.SessionStatusActive:
		tag = "started_at"
	case models.SessionStatusEnded:
		tag = "ended_at"
	default:
		_, err := s.pool.Exec(ctx, `UPDATE sessions SET status = $2 WHERE id = $1`, id, status)
		if err != nil {
			return fmt.Errorf("failed to update session status: %w", err)
		}
		return nil
	}

	query := fmt.Sprintf(`UPDATE sessions SET status = $2, %s = $3 WHERE id = $1`, tag)
	if _, err := s.pool.Exec(ctx, query, id, status, now); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}
