package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by the transactional operations. Services
// translate them into business-rule violations at the boundary.
var (
	// ErrEventFull means the conditional counter increment affected no rows:
	// the event was at capacity when the registration tried to commit.
	ErrEventFull = errors.New("event capacity exhausted")

	// ErrAlreadyRegistered means the (event_id, participant_id) uniqueness
	// constraint rejected the insert.
	ErrAlreadyRegistered = errors.New("attendance already registered")

	// ErrAlreadyCancelled means a cancel raced another cancel and lost.
	ErrAlreadyCancelled = errors.New("attendance already cancelled")

	// ErrNotConfirmed means a status transition found the row no longer
	// CONFIRMED when it tried to commit.
	ErrNotConfirmed = errors.New("attendance not confirmed")

	// ErrDuplicate means a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("duplicate resource")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
