package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/eventia-service/internal/config"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/repository"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

type fakeOrganizerRepo struct {
	mu         sync.Mutex
	organizers map[string]*domain.Organizer
}

func newFakeOrganizerRepo() *fakeOrganizerRepo {
	return &fakeOrganizerRepo{organizers: map[string]*domain.Organizer{}}
}

func (r *fakeOrganizerRepo) Create(_ context.Context, organizer *domain.Organizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.organizers {
		if strings.EqualFold(existing.Email, organizer.Email) {
			return repository.ErrDuplicate
		}
	}
	organizer.ID = uuid.NewString()
	now := time.Now()
	organizer.CreatedAt = now
	organizer.UpdatedAt = now
	clone := *organizer
	r.organizers[organizer.ID] = &clone
	return nil
}

func (r *fakeOrganizerRepo) Update(_ context.Context, organizer *domain.Organizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.organizers[organizer.ID]; !ok {
		return pgx.ErrNoRows
	}
	organizer.UpdatedAt = time.Now()
	clone := *organizer
	r.organizers[organizer.ID] = &clone
	return nil
}

func (r *fakeOrganizerRepo) GetByID(_ context.Context, id string) (*domain.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	organizer, ok := r.organizers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *organizer
	return &clone, nil
}

func (r *fakeOrganizerRepo) GetByEmail(_ context.Context, email string) (*domain.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, organizer := range r.organizers {
		if strings.EqualFold(organizer.Email, email) {
			clone := *organizer
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

func newAuthService(organizers *fakeOrganizerRepo, resets *fakeResetRepo) *AuthService {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 15
	cfg.Auth.PasswordResetTTLMinutes = 30
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewAuthService(cfg, AuthDependencies{
		OrganizerRepo:     organizers,
		PasswordResetRepo: resets,
	})
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newAuthService(newFakeOrganizerRepo(), newFakeResetRepo())
	ctx := context.Background()

	organizer, token, exp, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, organizer.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
	assert.NotEqual(t, "s3cret-pass", organizer.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, organizer.ID, claims.OrganizerID)

	_, loginToken, _, err := svc.Login(ctx, "laura@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newFakeOrganizerRepo(), newFakeResetRepo())
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Otra", "laura@example.com", "otro-pass99")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_RESOURCE", domainErr.Code)
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	svc := newAuthService(newFakeOrganizerRepo(), newFakeResetRepo())
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "laura@example.com", "wrong-pass")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)

	_, _, _, err = svc.Login(ctx, "nadie@example.com", "s3cret-pass")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestAuthLogin_InactiveOrganizer(t *testing.T) {
	organizers := newFakeOrganizerRepo()
	svc := newAuthService(organizers, newFakeResetRepo())
	ctx := context.Background()

	organizer, _, _, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)

	organizer.Active = false
	require.NoError(t, organizers.Update(ctx, organizer))

	_, _, _, err = svc.Login(ctx, "laura@example.com", "s3cret-pass")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestAuthChangePassword(t *testing.T) {
	svc := newAuthService(newFakeOrganizerRepo(), newFakeResetRepo())
	ctx := context.Background()

	organizer, _, _, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, organizer.ID, "wrong-pass", "nueva-clave1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)

	require.NoError(t, svc.ChangePassword(ctx, organizer.ID, "s3cret-pass", "nueva-clave1"))
	_, _, _, err = svc.Login(ctx, "laura@example.com", "nueva-clave1")
	require.NoError(t, err)
}

func TestAuthPasswordResetFlow(t *testing.T) {
	svc := newAuthService(newFakeOrganizerRepo(), newFakeResetRepo())
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Laura", "laura@example.com", "s3cret-pass")
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "laura@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "clave-nueva2"))
	_, _, _, err = svc.Login(ctx, "laura@example.com", "clave-nueva2")
	require.NoError(t, err)

	// A consumed token cannot be replayed.
	err = svc.ConfirmPasswordReset(ctx, token.Token, "otra-clave33")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}
