package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventia-service/internal/api/dto"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/service"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// ParticipantsHandler manages participant endpoints.
type ParticipantsHandler struct {
	service *service.ParticipantService
}

// NewParticipantsHandler constructs handler.
func NewParticipantsHandler(participantService *service.ParticipantService) *ParticipantsHandler {
	return &ParticipantsHandler{service: participantService}
}

// CreateParticipant POST /participants.
func (h *ParticipantsHandler) CreateParticipant(c *fiber.Ctx) error {
	var req dto.CreateParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateParticipantRequest(req.FirstName, req.LastName, req.Email, req.DocumentNumber, req.DocumentType); err != nil {
		return err
	}

	participant := &domain.Participant{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		DocumentType:   req.DocumentType,
	}
	created, err := h.service.Create(c.Context(), participant)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": participantResponse(created)})
}

// UpdateParticipant PUT /participants/:id.
func (h *ParticipantsHandler) UpdateParticipant(c *fiber.Ctx) error {
	var req dto.UpdateParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateParticipantRequest(req.FirstName, req.LastName, req.Email, req.DocumentNumber, req.DocumentType); err != nil {
		return err
	}

	participant := &domain.Participant{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		DocumentType:   req.DocumentType,
	}
	updated, err := h.service.Update(c.Context(), c.Params("id"), participant)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": participantResponse(updated)})
}

// ListParticipants GET /participants.
func (h *ParticipantsHandler) ListParticipants(c *fiber.Ctx) error {
	participants, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		items = append(items, participantResponse(&participants[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetParticipant GET /participants/:id.
func (h *ParticipantsHandler) GetParticipant(c *fiber.Ctx) error {
	participant, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": participantResponse(participant)})
}

// GetParticipantByEmail GET /participants/email/:email.
func (h *ParticipantsHandler) GetParticipantByEmail(c *fiber.Ctx) error {
	participant, err := h.service.GetByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": participantResponse(participant)})
}

// GetParticipantByDocument GET /participants/document/:type/:number.
func (h *ParticipantsHandler) GetParticipantByDocument(c *fiber.Ctx) error {
	docType, err := parseDocumentType(c.Params("type"))
	if err != nil {
		return err
	}
	participant, err := h.service.GetByDocument(c.Context(), c.Params("number"), docType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": participantResponse(participant)})
}

// DeleteParticipant DELETE /participants/:id.
func (h *ParticipantsHandler) DeleteParticipant(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateParticipantRequest(firstName, lastName, email, documentNumber string, docType domain.DocumentType) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return apperrors.NewValidationError("first_name and last_name required", nil)
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError("valid email required", nil)
	}
	if strings.TrimSpace(documentNumber) == "" {
		return apperrors.NewValidationError("document_number required", nil)
	}
	if _, err := parseDocumentType(string(docType)); err != nil {
		return err
	}
	return nil
}

func parseDocumentType(raw string) (domain.DocumentType, error) {
	docType := domain.DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
	switch docType {
	case domain.DocumentTypeCC, domain.DocumentTypeCE, domain.DocumentTypeTI, domain.DocumentTypePassport:
		return docType, nil
	}
	return "", apperrors.NewValidationError("unknown document type", map[string]any{"document_type": raw})
}

func participantResponse(participant *domain.Participant) dto.ParticipantResponse {
	return dto.ParticipantResponse{
		ID:             participant.ID,
		FirstName:      participant.FirstName,
		LastName:       participant.LastName,
		FullName:       participant.FullName(),
		Email:          participant.Email,
		Phone:          participant.Phone,
		DocumentNumber: participant.DocumentNumber,
		DocumentType:   participant.DocumentType,
		CreatedAt:      participant.CreatedAt,
		UpdatedAt:      participant.UpdatedAt,
	}
}
