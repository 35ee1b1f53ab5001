package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateResponse indicates a response already exists for the
	// (participant, question) pair. Callers treat this as confirmation of
	// already-applied state, not a failure.
	ErrDuplicateResponse = errors.New("response already recorded")

	// ErrSessionActive indicates a hard delete was attempted on a participant
	// of an already-launched session.
	ErrSessionActive = errors.New("session already active")
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
