package domain

import "time"

// AttendanceStatus enumerates registration states for an attendance record.
type AttendanceStatus string

const (
	AttendanceStatusConfirmed AttendanceStatus = "CONFIRMED"
	AttendanceStatusCancelled AttendanceStatus = "CANCELLED"
	AttendanceStatusAttended  AttendanceStatus = "ATTENDED"
	AttendanceStatusNoShow    AttendanceStatus = "NO_SHOW"
	// AttendanceStatusWaitlisted is reserved for overflow handling and is
	// never produced by current operations.
	AttendanceStatusWaitlisted AttendanceStatus = "WAITLISTED"
)

// Attendance records one participant's registration for one event.
// It references both aggregates by id only; at most one row exists per
// (event, participant) pair.
type Attendance struct {
	ID            string
	EventID       string
	ParticipantID string
	RegisteredAt  time.Time
	Status        AttendanceStatus
	Notes         string
	UpdatedAt     time.Time
}

// IsConfirmed reports whether the attendance currently holds a slot as a
// confirmed registration.
func (a *Attendance) IsConfirmed() bool {
	return a.Status == AttendanceStatusConfirmed
}
