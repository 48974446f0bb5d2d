package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventia-service/internal/api/dto"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/service"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// EventsHandler manages event endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return apperrors.NewValidationError("name, start_time, end_time required", nil)
	}

	event := &domain.Event{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
	}
	created, err := h.service.Create(c.Context(), event)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": eventResponse(created)})
}

// UpdateEvent PUT /events/:id.
func (h *EventsHandler) UpdateEvent(c *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return apperrors.NewValidationError("name, start_time, end_time required", nil)
	}

	event := &domain.Event{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
	}
	updated, err := h.service.Update(c.Context(), c.Params("id"), event)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(updated)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// ListAvailableEvents GET /events/available.
func (h *EventsHandler) ListAvailableEvents(c *fiber.Ctx) error {
	events, err := h.service.ListAvailable(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// ListUpcomingEvents GET /events/upcoming.
func (h *EventsHandler) ListUpcomingEvents(c *fiber.Ctx) error {
	events, err := h.service.ListUpcoming(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// ListEventsByStatus GET /events/status/:status.
func (h *EventsHandler) ListEventsByStatus(c *fiber.Ctx) error {
	status, err := parseEventStatus(c.Params("status"))
	if err != nil {
		return err
	}
	events, err := h.service.ListByStatus(c.Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponses(events)})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// ChangeEventStatus PATCH /events/:id/status/:status.
func (h *EventsHandler) ChangeEventStatus(c *fiber.Ctx) error {
	status, err := parseEventStatus(c.Params("status"))
	if err != nil {
		return err
	}
	event, err := h.service.ChangeStatus(c.Context(), c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// DeleteEvent DELETE /events/:id.
func (h *EventsHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckAvailability GET /events/:id/availability.
func (h *EventsHandler) CheckAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	available, err := h.service.CheckAvailable(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilityResponse{EventID: id, Available: available}})
}

func parseEventStatus(raw string) (domain.EventStatus, error) {
	status := domain.EventStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case domain.EventStatusActive, domain.EventStatusSuspended, domain.EventStatusCancelled, domain.EventStatusFinished:
		return status, nil
	}
	return "", apperrors.NewValidationError("unknown event status", map[string]any{"status": raw})
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:              event.ID,
		Name:            event.Name,
		Description:     event.Description,
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		Location:        event.Location,
		MaxCapacity:     event.MaxCapacity,
		RegisteredCount: event.RegisteredCount,
		AvailableSlots:  event.AvailableSlots(),
		Status:          event.Status,
		CreatedAt:       event.CreatedAt,
		UpdatedAt:       event.UpdatedAt,
	}
}

func eventResponses(events []domain.Event) []dto.EventResponse {
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return items
}
