package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// OrganizerRepository defines persistence access for organizer accounts.
type OrganizerRepository interface {
	Create(ctx context.Context, organizer *domain.Organizer) error
	Update(ctx context.Context, organizer *domain.Organizer) error
	GetByID(ctx context.Context, id string) (*domain.Organizer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Organizer, error)
}

type organizerRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizerRepository returns a Postgres-backed implementation.
func NewOrganizerRepository(pool *pgxpool.Pool) OrganizerRepository {
	return &organizerRepository{pool: pool}
}

func (r *organizerRepository) Create(ctx context.Context, organizer *domain.Organizer) error {
	const query = `
        INSERT INTO organizers (name, email, password_hash, active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		organizer.Name,
		organizer.Email,
		organizer.PasswordHash,
		organizer.Active,
	).Scan(&organizer.ID, &organizer.CreatedAt, &organizer.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *organizerRepository) Update(ctx context.Context, organizer *domain.Organizer) error {
	const query = `
        UPDATE organizers SET name=$1, email=$2, password_hash=$3, active=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		organizer.Name,
		organizer.Email,
		organizer.PasswordHash,
		organizer.Active,
		organizer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizerRepository) GetByID(ctx context.Context, id string) (*domain.Organizer, error) {
	const query = `
        SELECT id, name, email, password_hash, active, created_at, updated_at
        FROM organizers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *organizerRepository) GetByEmail(ctx context.Context, email string) (*domain.Organizer, error) {
	const query = `
        SELECT id, name, email, password_hash, active, created_at, updated_at
        FROM organizers WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *organizerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Organizer, error) {
	var organizer domain.Organizer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&organizer.ID,
		&organizer.Name,
		&organizer.Email,
		&organizer.PasswordHash,
		&organizer.Active,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &organizer, nil
}
