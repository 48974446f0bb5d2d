package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// AttendanceRepository encapsulates attendance persistence. The mutating
// operations that also move the event counter (Register, Cancel, Delete) run
// as single transactions so a failure on either side rolls back both.
type AttendanceRepository interface {
	// Register inserts the attendance and increments the event counter in
	// one transaction. Returns ErrAlreadyRegistered when the
	// (event, participant) uniqueness constraint rejects the insert and
	// ErrEventFull when the event is at capacity.
	Register(ctx context.Context, attendance *domain.Attendance) error
	// Cancel marks the attendance CANCELLED and decrements the counter.
	// Returns ErrAlreadyCancelled when the row is already cancelled.
	Cancel(ctx context.Context, id string) (*domain.Attendance, error)
	// Delete removes the row permanently, decrementing the counter only when
	// the deleted row was CONFIRMED.
	Delete(ctx context.Context, id string) error
	// UpdateStatus moves a CONFIRMED attendance into the given status.
	// Returns ErrNotConfirmed when the row exists but is no longer CONFIRMED.
	UpdateStatus(ctx context.Context, id string, status domain.AttendanceStatus) (*domain.Attendance, error)
	GetByID(ctx context.Context, id string) (*domain.Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Attendance, error)
	ListByParticipant(ctx context.Context, participantID string) ([]domain.Attendance, error)
	ExistsByEventAndParticipant(ctx context.Context, eventID, participantID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status domain.AttendanceStatus) (int64, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository instantiates repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

const attendanceColumns = `id, event_id, participant_id, registered_at, status, notes, updated_at`

func (r *attendanceRepository) Register(ctx context.Context, attendance *domain.Attendance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO attendances (event_id, participant_id, registered_at, status, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, updated_at`
	if err := tx.QueryRow(ctx, insert,
		attendance.EventID,
		attendance.ParticipantID,
		attendance.RegisteredAt,
		attendance.Status,
		attendance.Notes,
	).Scan(&attendance.ID, &attendance.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		return err
	}

	// The conditional increment is the serialization point: of two
	// concurrent registrations racing for the last slot, exactly one commits.
	if err := incrementRegisteredTx(ctx, tx, attendance.EventID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *attendanceRepository) Cancel(ctx context.Context, id string) (*domain.Attendance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Guarding on status in the UPDATE keeps a racing second cancel from
	// decrementing the counter twice.
	const update = `
        UPDATE attendances SET status=$2, updated_at=NOW()
        WHERE id=$1 AND status <> $2
        RETURNING ` + attendanceColumns
	var attendance domain.Attendance
	if err := tx.QueryRow(ctx, update, id, domain.AttendanceStatusCancelled).Scan(
		&attendance.ID,
		&attendance.EventID,
		&attendance.ParticipantID,
		&attendance.RegisteredAt,
		&attendance.Status,
		&attendance.Notes,
		&attendance.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			exists, existsErr := r.exists(ctx, id)
			if existsErr != nil {
				return nil, existsErr
			}
			if exists {
				return nil, ErrAlreadyCancelled
			}
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}

	if err := decrementRegisteredTx(ctx, tx, attendance.EventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		eventID string
		status  domain.AttendanceStatus
	)
	if err := tx.QueryRow(ctx,
		`DELETE FROM attendances WHERE id=$1 RETURNING event_id, status`, id,
	).Scan(&eventID, &status); err != nil {
		return err
	}

	if status == domain.AttendanceStatusConfirmed {
		if err := decrementRegisteredTx(ctx, tx, eventID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *attendanceRepository) UpdateStatus(ctx context.Context, id string, status domain.AttendanceStatus) (*domain.Attendance, error) {
	// Guarding on CONFIRMED keeps a transition from overwriting a cancel
	// that committed after the caller's status check; a resurrected row
	// would hold a slot the counter no longer counts.
	const query = `
        UPDATE attendances SET status=$2, updated_at=NOW()
        WHERE id=$1 AND status=$3
        RETURNING ` + attendanceColumns
	attendance, err := r.fetchSingle(ctx, query, id, status, domain.AttendanceStatusConfirmed)
	if err == pgx.ErrNoRows {
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, ErrNotConfirmed
		}
		return nil, pgx.ErrNoRows
	}
	return attendance, err
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendances WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *attendanceRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Attendance, error) {
	var attendance domain.Attendance
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&attendance.ID,
		&attendance.EventID,
		&attendance.ParticipantID,
		&attendance.RegisteredAt,
		&attendance.Status,
		&attendance.Notes,
		&attendance.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Attendance, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendances
        WHERE event_id=$1 ORDER BY registered_at ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendances(rows)
}

func (r *attendanceRepository) ListByParticipant(ctx context.Context, participantID string) ([]domain.Attendance, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendances
        WHERE participant_id=$1 ORDER BY registered_at ASC`
	rows, err := r.pool.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendances(rows)
}

func (r *attendanceRepository) ExistsByEventAndParticipant(ctx context.Context, eventID, participantID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendances WHERE event_id=$1 AND participant_id=$2)`,
		eventID, participantID,
	).Scan(&exists)
	return exists, err
}

func (r *attendanceRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendances WHERE event_id=$1`, eventID,
	).Scan(&count)
	return count, err
}

func (r *attendanceRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.AttendanceStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendances WHERE event_id=$1 AND status=$2`, eventID, status,
	).Scan(&count)
	return count, err
}

func (r *attendanceRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendances WHERE id=$1)`, id,
	).Scan(&exists)
	return exists, err
}

func scanAttendances(rows pgx.Rows) ([]domain.Attendance, error) {
	var result []domain.Attendance
	for rows.Next() {
		var attendance domain.Attendance
		if err := rows.Scan(
			&attendance.ID,
			&attendance.EventID,
			&attendance.ParticipantID,
			&attendance.RegisteredAt,
			&attendance.Status,
			&attendance.Notes,
			&attendance.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attendance)
	}
	return result, rows.Err()
}
