package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventia-service/internal/api/http/handlers"
	"github.com/spec-kit/eventia-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Organizers     *handlers.OrganizersHandler
	Events         *handlers.EventsHandler
	Participants   *handlers.ParticipantsHandler
	Attendances    *handlers.AttendancesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Organizers.Register)
	authGroup.Post("/login", cfg.Organizers.Login)
	authGroup.Post("/password/reset/request", cfg.Organizers.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Organizers.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireOrganizer(), cfg.Organizers.ChangePassword)

	events := api.Group("/events")
	events.Get("/", cfg.Events.ListEvents)
	events.Get("/available", cfg.Events.ListAvailableEvents)
	events.Get("/upcoming", cfg.Events.ListUpcomingEvents)
	events.Get("/status/:status", cfg.Events.ListEventsByStatus)
	events.Get("/:id", cfg.Events.GetEvent)
	events.Get("/:id/availability", cfg.Events.CheckAvailability)

	protectedEvents := events.Group("", cfg.AuthMiddleware.Handle, auth.RequireOrganizer())
	protectedEvents.Post("/", cfg.Events.CreateEvent)
	protectedEvents.Put("/:id", cfg.Events.UpdateEvent)
	protectedEvents.Patch("/:id/status/:status", cfg.Events.ChangeEventStatus)
	protectedEvents.Delete("/:id", cfg.Events.DeleteEvent)

	participants := api.Group("/participants")
	participants.Post("/", cfg.Participants.CreateParticipant)
	participants.Get("/", cfg.Participants.ListParticipants)
	participants.Get("/email/:email", cfg.Participants.GetParticipantByEmail)
	participants.Get("/document/:type/:number", cfg.Participants.GetParticipantByDocument)
	participants.Get("/:id", cfg.Participants.GetParticipant)
	participants.Put("/:id", cfg.Participants.UpdateParticipant)
	participants.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireOrganizer(), cfg.Participants.DeleteParticipant)

	attendances := api.Group("/attendances")
	attendances.Post("/", cfg.Attendances.RegisterAttendance)
	attendances.Get("/event/:eventID/statistics", cfg.Attendances.GetEventStatistics)
	attendances.Get("/event/:eventID", cfg.Attendances.ListByEvent)
	attendances.Get("/participant/:participantID", cfg.Attendances.ListByParticipant)
	attendances.Get("/:id", cfg.Attendances.GetAttendance)
	attendances.Patch("/:id/cancel", cfg.Attendances.CancelAttendance)
	attendances.Patch("/:id/attended", cfg.AuthMiddleware.Handle, auth.RequireOrganizer(), cfg.Attendances.MarkAttended)
	attendances.Patch("/:id/no-show", cfg.AuthMiddleware.Handle, auth.RequireOrganizer(), cfg.Attendances.MarkNoShow)
	attendances.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireOrganizer(), cfg.Attendances.DeleteAttendance)
}
