package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// EventRepository encapsulates event persistence. It is the sole owner of
// registered_count mutations; the attendance repository reuses its tx
// helpers so the counter SQL lives in one place.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	ListByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error)
	ListAvailable(ctx context.Context) ([]domain.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]domain.Event, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	IncrementRegistered(ctx context.Context, id string) error
	DecrementRegistered(ctx context.Context, id string) error
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, name, description, start_time, end_time, location,
               capacity_max, registered_count, status, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, start_time, end_time, location, capacity_max, registered_count, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.MaxCapacity,
		event.RegisteredCount,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET name=$1, description=$2, start_time=$3, end_time=$4, location=$5,
            capacity_max=$6, status=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.MaxCapacity,
		event.Status,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.Location,
		&event.MaxCapacity,
		&event.RegisteredCount,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events ORDER BY start_time ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE status=$1 ORDER BY start_time ASC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListAvailable(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
        WHERE status=$1 AND registered_count < capacity_max
        ORDER BY start_time ASC`
	rows, err := r.pool.Query(ctx, query, domain.EventStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
        WHERE start_time > $1 AND status=$2
        ORDER BY start_time ASC`
	rows, err := r.pool.Query(ctx, query, from, domain.EventStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// IncrementRegistered bumps the counter only while capacity remains. Zero
// rows affected means the event is full (or missing).
func (r *eventRepository) IncrementRegistered(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, incrementRegisteredSQL, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return ErrEventFull
	}
	return nil
}

// DecrementRegistered lowers the counter, floor-clamped at zero: decrementing
// an empty event is a no-op, never an underflow.
func (r *eventRepository) DecrementRegistered(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, decrementRegisteredSQL, id)
	return err
}

// Counter SQL shared with the attendance repository's transactions. The
// guards make both statements atomic: the increment can never overshoot
// capacity_max and the decrement can never go negative.
const (
	incrementRegisteredSQL = `
        UPDATE events SET registered_count = registered_count + 1, updated_at = NOW()
        WHERE id = $1 AND registered_count < capacity_max`

	decrementRegisteredSQL = `
        UPDATE events SET registered_count = registered_count - 1, updated_at = NOW()
        WHERE id = $1 AND registered_count > 0`
)

func incrementRegisteredTx(ctx context.Context, tx pgx.Tx, eventID string) error {
	cmd, err := tx.Exec(ctx, incrementRegisteredSQL, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEventFull
	}
	return nil
}

func decrementRegisteredTx(ctx context.Context, tx pgx.Tx, eventID string) error {
	_, err := tx.Exec(ctx, decrementRegisteredSQL, eventID)
	return err
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.StartTime,
			&event.EndTime,
			&event.Location,
			&event.MaxCapacity,
			&event.RegisteredCount,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
