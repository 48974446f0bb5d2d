package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventia-service/internal/api/dto"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/service"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// AttendancesHandler manages attendance endpoints.
type AttendancesHandler struct {
	service *service.AttendanceService
}

// NewAttendancesHandler constructs handler.
func NewAttendancesHandler(attendanceService *service.AttendanceService) *AttendancesHandler {
	return &AttendancesHandler{service: attendanceService}
}

// RegisterAttendance POST /attendances.
func (h *AttendancesHandler) RegisterAttendance(c *fiber.Ctx) error {
	var req dto.RegisterAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.ParticipantID) == "" {
		return apperrors.NewValidationError("event_id and participant_id required", nil)
	}

	attendance, err := h.service.Register(c.Context(), req.EventID, req.ParticipantID, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": attendanceResponse(attendance)})
}

// GetAttendance GET /attendances/:id.
func (h *AttendancesHandler) GetAttendance(c *fiber.Ctx) error {
	attendance, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponse(attendance)})
}

// ListByEvent GET /attendances/event/:eventID.
func (h *AttendancesHandler) ListByEvent(c *fiber.Ctx) error {
	attendances, err := h.service.ListByEvent(c.Context(), c.Params("eventID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponses(attendances)})
}

// ListByParticipant GET /attendances/participant/:participantID.
func (h *AttendancesHandler) ListByParticipant(c *fiber.Ctx) error {
	attendances, err := h.service.ListByParticipant(c.Context(), c.Params("participantID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponses(attendances)})
}

// CancelAttendance PATCH /attendances/:id/cancel.
func (h *AttendancesHandler) CancelAttendance(c *fiber.Ctx) error {
	attendance, err := h.service.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponse(attendance)})
}

// MarkAttended PATCH /attendances/:id/attended.
func (h *AttendancesHandler) MarkAttended(c *fiber.Ctx) error {
	attendance, err := h.service.MarkAttended(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponse(attendance)})
}

// MarkNoShow PATCH /attendances/:id/no-show.
func (h *AttendancesHandler) MarkNoShow(c *fiber.Ctx) error {
	attendance, err := h.service.MarkNoShow(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponse(attendance)})
}

// DeleteAttendance DELETE /attendances/:id.
func (h *AttendancesHandler) DeleteAttendance(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetEventStatistics GET /attendances/event/:eventID/statistics.
func (h *AttendancesHandler) GetEventStatistics(c *fiber.Ctx) error {
	stats, err := h.service.GetStatistics(c.Context(), c.Params("eventID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func attendanceResponse(attendance *domain.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:            attendance.ID,
		EventID:       attendance.EventID,
		ParticipantID: attendance.ParticipantID,
		RegisteredAt:  attendance.RegisteredAt,
		Status:        attendance.Status,
		Notes:         attendance.Notes,
		UpdatedAt:     attendance.UpdatedAt,
	}
}

func attendanceResponses(attendances []domain.Attendance) []dto.AttendanceResponse {
	items := make([]dto.AttendanceResponse, 0, len(attendances))
	for i := range attendances {
		items = append(items, attendanceResponse(&attendances[i]))
	}
	return items
}
