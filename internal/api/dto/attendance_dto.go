package dto

import (
	"time"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// RegisterAttendanceRequest payload.
type RegisterAttendanceRequest struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
	Notes         string `json:"notes"`
}

// AttendanceResponse standard attendance representation.
type AttendanceResponse struct {
	ID            string                  `json:"id"`
	EventID       string                  `json:"event_id"`
	ParticipantID string                  `json:"participant_id"`
	RegisteredAt  time.Time               `json:"registered_at"`
	Status        domain.AttendanceStatus `json:"status"`
	Notes         string                  `json:"notes,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
