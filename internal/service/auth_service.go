package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventia-service/internal/auth"
	"github.com/spec-kit/eventia-service/internal/config"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/repository"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// AuthService coordinates organizer registration and login flows.
type AuthService struct {
	organizers repository.OrganizerRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	OrganizerRepo     repository.OrganizerRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		organizers: deps.OrganizerRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new organizer account and returns a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Organizer, string, time.Time, error) {
	if _, err := s.organizers.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewDuplicateResource("organizer", "email", email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	organizer := &domain.Organizer{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.organizers.Create(ctx, organizer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", time.Time{}, apperrors.NewDuplicateResource("organizer", "email", email)
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(organizer.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return organizer, token, exp, nil
}

// Login authenticates an organizer.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Organizer, string, time.Time, error) {
	organizer, err := s.organizers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !organizer.Active {
		return nil, "", time.Time{}, apperrors.NewForbidden("organizer inactive")
	}
	if err := auth.ComparePassword(organizer.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(organizer.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return organizer, token, exp, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, organizerID, currentPassword, newPassword string) error {
	organizer, err := s.organizers.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("organizer", nil)
		}
		return err
	}
	if err := auth.ComparePassword(organizer.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	organizer.PasswordHash = hash
	return s.organizers.Update(ctx, organizer)
}

// RequestPasswordReset persists a reset token for the organizer email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	organizer, err := s.organizers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organizer", nil)
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		OrganizerID: organizer.ID,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("token expired or used")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	organizer, err := s.organizers.GetByID(ctx, token.OrganizerID)
	if err != nil {
		return err
	}
	organizer.PasswordHash = hash
	if err := s.organizers.Update(ctx, organizer); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}
