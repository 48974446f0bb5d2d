package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/eventia-service/internal/cache"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/repository"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// ParticipantService manages participant records and their uniqueness rules.
type ParticipantService struct {
	participants repository.ParticipantRepository
	cache        cache.Store
	logger       *zap.Logger
}

// ParticipantDependencies bundles requirements for the participant service.
type ParticipantDependencies struct {
	ParticipantRepo repository.ParticipantRepository
	Cache           cache.Store
	Logger          *zap.Logger
}

// NewParticipantService constructs the service.
func NewParticipantService(deps ParticipantDependencies) *ParticipantService {
	return &ParticipantService{
		participants: deps.ParticipantRepo,
		cache:        deps.Cache,
		logger:       deps.Logger,
	}
}

// Create persists a new participant after uniqueness checks on email and
// document.
func (s *ParticipantService) Create(ctx context.Context, participant *domain.Participant) (*domain.Participant, error) {
	exists, err := s.participants.ExistsByEmail(ctx, participant.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateResource("participant", "email", participant.Email)
	}

	exists, err = s.participants.ExistsByDocument(ctx, participant.DocumentNumber, participant.DocumentType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateResource("participant", "document", participant.DocumentNumber)
	}

	if err := s.participants.Create(ctx, participant); err != nil {
		// Concurrent creation can slip past the pre-checks; the unique
		// constraints are the real arbiter.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateResource("participant", "email", participant.Email)
		}
		return nil, err
	}
	s.logger.Info("participant created", zap.String("participant_id", participant.ID))

	s.evict(ctx)
	return participant, nil
}

// Update persists changes to an existing participant.
func (s *ParticipantService) Update(ctx context.Context, id string, updated *domain.Participant) (*domain.Participant, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Email != existing.Email {
		taken, err := s.participants.ExistsByEmail(ctx, updated.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewDuplicateResource("participant", "email", updated.Email)
		}
	}
	if updated.DocumentNumber != existing.DocumentNumber || updated.DocumentType != existing.DocumentType {
		taken, err := s.participants.ExistsByDocument(ctx, updated.DocumentNumber, updated.DocumentType)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewDuplicateResource("participant", "document", updated.DocumentNumber)
		}
	}

	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	if err := s.participants.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateResource("participant", "email", updated.Email)
		}
		return nil, s.mapParticipantErr(err)
	}
	s.logger.Info("participant updated", zap.String("participant_id", id))

	s.evict(ctx)
	return updated, nil
}

// GetByID returns a participant, served from cache when possible.
func (s *ParticipantService) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	var cached domain.Participant
	if hit, err := s.cache.Get(ctx, cache.NamespaceParticipants, id, &cached); err == nil && hit {
		return &cached, nil
	}

	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapParticipantErr(err)
	}
	if err := s.cache.Set(ctx, cache.NamespaceParticipants, id, participant); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return participant, nil
}

// GetByEmail looks a participant up by email.
func (s *ParticipantService) GetByEmail(ctx context.Context, email string) (*domain.Participant, error) {
	participant, err := s.participants.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.mapParticipantErr(err)
	}
	return participant, nil
}

// GetByDocument looks a participant up by document number and type.
func (s *ParticipantService) GetByDocument(ctx context.Context, number string, docType domain.DocumentType) (*domain.Participant, error) {
	participant, err := s.participants.GetByDocument(ctx, number, docType)
	if err != nil {
		return nil, s.mapParticipantErr(err)
	}
	return participant, nil
}

// List returns all participants.
func (s *ParticipantService) List(ctx context.Context) ([]domain.Participant, error) {
	var cached []domain.Participant
	if hit, err := s.cache.Get(ctx, cache.NamespaceParticipants, "all", &cached); err == nil && hit {
		return cached, nil
	}

	list, err := s.participants.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.NamespaceParticipants, "all", list); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return list, nil
}

// Delete removes a participant; attendances cascade at the storage layer.
func (s *ParticipantService) Delete(ctx context.Context, id string) error {
	if err := s.participants.Delete(ctx, id); err != nil {
		return s.mapParticipantErr(err)
	}
	s.logger.Info("participant deleted", zap.String("participant_id", id))

	s.evict(ctx)
	if err := s.cache.Evict(ctx, cache.NamespaceAttendances, cache.NamespaceEventStats); err != nil {
		s.logger.Warn("cache eviction failed", zap.Error(err))
	}
	return nil
}

func (s *ParticipantService) evict(ctx context.Context) {
	if err := s.cache.Evict(ctx, cache.NamespaceParticipants); err != nil {
		s.logger.Warn("cache eviction failed", zap.Error(err))
	}
}

func (s *ParticipantService) mapParticipantErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("participant", nil)
	}
	return err
}
