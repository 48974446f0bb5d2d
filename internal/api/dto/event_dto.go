package dto

import (
	"time"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
}

// UpdateEventRequest payload.
type UpdateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
}

// EventResponse standard event representation.
type EventResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	Location        string             `json:"location"`
	MaxCapacity     int                `json:"max_capacity"`
	RegisteredCount int                `json:"registered_count"`
	AvailableSlots  int                `json:"available_slots"`
	Status          domain.EventStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// AvailabilityResponse reports whether an event accepts registrations.
type AvailabilityResponse struct {
	EventID   string `json:"event_id"`
	Available bool   `json:"available"`
}
