package events

import (
	"time"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAttendanceRegistered EventType = "attendance_registered"
	EventAttendanceCancelled  EventType = "attendance_cancelled"
	EventAttendanceMarked     EventType = "attendance_marked"
	EventAttendanceDeleted    EventType = "attendance_deleted"
	EventEventCreated         EventType = "event_created"
	EventEventStatusChanged   EventType = "event_status_changed"
)

// Event represents a domain event emitted by services. EventID always refers
// to the scheduled event the change belongs to.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AttendanceRegisteredPayload payload.
type AttendanceRegisteredPayload struct {
	AttendanceID  string `json:"attendance_id"`
	ParticipantID string `json:"participant_id"`
}

// AttendanceCancelledPayload payload.
type AttendanceCancelledPayload struct {
	AttendanceID  string `json:"attendance_id"`
	ParticipantID string `json:"participant_id"`
}

// AttendanceMarkedPayload payload.
type AttendanceMarkedPayload struct {
	AttendanceID string                  `json:"attendance_id"`
	Status       domain.AttendanceStatus `json:"status"`
}

// AttendanceDeletedPayload payload.
type AttendanceDeletedPayload struct {
	AttendanceID string                  `json:"attendance_id"`
	WasStatus    domain.AttendanceStatus `json:"was_status"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	MaxCapacity int       `json:"max_capacity"`
}

// EventStatusChangedPayload payload.
type EventStatusChangedPayload struct {
	OldStatus domain.EventStatus `json:"old_status"`
	NewStatus domain.EventStatus `json:"new_status"`
}
