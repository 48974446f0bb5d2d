package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/repository"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated organizer.
type Principal struct {
	Organizer *domain.Organizer
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	organizers repository.OrganizerRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, organizers repository.OrganizerRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, organizers: organizers}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	organizer, err := m.organizers.GetByID(c.Context(), claims.OrganizerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("organizer not found")
		}
		return apperrors.MapError(err)
	}
	if !organizer.Active {
		return apperrors.NewForbidden("organizer inactive")
	}

	c.Locals(principalKey, &Principal{Organizer: organizer})
	return c.Next()
}

// RequireOrganizer ensures an organizer is authenticated.
func RequireOrganizer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Organizer == nil {
			return apperrors.NewForbidden("organizer required")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated organizer.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
