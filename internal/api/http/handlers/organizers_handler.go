package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventia-service/internal/api/dto"
	"github.com/spec-kit/eventia-service/internal/auth"
	"github.com/spec-kit/eventia-service/internal/service"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// OrganizersHandler manages organizer auth endpoints.
type OrganizersHandler struct {
	service *service.AuthService
}

// NewOrganizersHandler constructs handler.
func NewOrganizersHandler(authService *service.AuthService) *OrganizersHandler {
	return &OrganizersHandler{service: authService}
}

// Register POST /auth/register.
func (h *OrganizersHandler) Register(c *fiber.Ctx) error {
	var req dto.OrganizerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < 8 {
		return apperrors.NewValidationError("name, email and password of at least 8 characters required", nil)
	}

	organizer, token, exp, err := h.service.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"organizer": dto.OrganizerResponse{ID: organizer.ID, Name: organizer.Name, Email: organizer.Email},
			"auth":      dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login POST /auth/login.
func (h *OrganizersHandler) Login(c *fiber.Ctx) error {
	var req dto.OrganizerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	organizer, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"organizer": dto.OrganizerResponse{ID: organizer.ID, Name: organizer.Name, Email: organizer.Email},
			"auth":      dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ChangePassword POST /auth/password/change.
func (h *OrganizersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Organizer == nil {
		return apperrors.NewUnauthorized("organizer required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		return apperrors.NewValidationError("current_password and new_password of at least 8 characters required", nil)
	}

	if err := h.service.ChangePassword(c.Context(), principal.Organizer.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *OrganizersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	token, err := h.service.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	// The token is returned directly until a mail channel exists.
	return c.JSON(fiber.Map{"data": fiber.Map{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *OrganizersHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Token) == "" || len(req.NewPassword) < 8 {
		return apperrors.NewValidationError("token and new_password of at least 8 characters required", nil)
	}

	if err := h.service.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}
