package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// ParticipantRepository encapsulates participant persistence.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *domain.Participant) error
	Update(ctx context.Context, participant *domain.Participant) error
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Participant, error)
	GetByDocument(ctx context.Context, number string, docType domain.DocumentType) (*domain.Participant, error)
	List(ctx context.Context) ([]domain.Participant, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByDocument(ctx context.Context, number string, docType domain.DocumentType) (bool, error)
}

type participantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository instantiates repository.
func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{pool: pool}
}

const participantColumns = `id, first_name, last_name, email, phone, document_number, document_type, created_at, updated_at`

func (r *participantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	const query = `
        INSERT INTO participants (first_name, last_name, email, phone, document_number, document_type)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		participant.FirstName,
		participant.LastName,
		participant.Email,
		participant.Phone,
		participant.DocumentNumber,
		participant.DocumentType,
	).Scan(&participant.ID, &participant.CreatedAt, &participant.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *participantRepository) Update(ctx context.Context, participant *domain.Participant) error {
	const query = `
        UPDATE participants SET first_name=$1, last_name=$2, email=$3, phone=$4,
            document_number=$5, document_type=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		participant.FirstName,
		participant.LastName,
		participant.Email,
		participant.Phone,
		participant.DocumentNumber,
		participant.DocumentType,
		participant.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *participantRepository) GetByEmail(ctx context.Context, email string) (*domain.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *participantRepository) GetByDocument(ctx context.Context, number string, docType domain.DocumentType) (*domain.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants
        WHERE document_number=$1 AND document_type=$2`
	return r.fetchSingle(ctx, query, number, docType)
}

func (r *participantRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Participant, error) {
	var participant domain.Participant
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&participant.ID,
		&participant.FirstName,
		&participant.LastName,
		&participant.Email,
		&participant.Phone,
		&participant.DocumentNumber,
		&participant.DocumentType,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Participant
	for rows.Next() {
		var participant domain.Participant
		if err := rows.Scan(
			&participant.ID,
			&participant.FirstName,
			&participant.LastName,
			&participant.Email,
			&participant.Phone,
			&participant.DocumentNumber,
			&participant.DocumentType,
			&participant.CreatedAt,
			&participant.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, participant)
	}
	return result, rows.Err()
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *participantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM participants WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *participantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM participants WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *participantRepository) ExistsByDocument(ctx context.Context, number string, docType domain.DocumentType) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE document_number=$1 AND document_type=$2)`,
		number, docType,
	).Scan(&exists)
	return exists, err
}
