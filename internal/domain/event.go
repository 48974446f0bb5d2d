package domain

import "time"

// EventStatus enumerates lifecycle states for events.
type EventStatus string

const (
	EventStatusActive    EventStatus = "ACTIVE"
	EventStatusSuspended EventStatus = "SUSPENDED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusFinished  EventStatus = "FINISHED"
)

// Event is the aggregate for schedulable activities with bounded capacity.
type Event struct {
	ID              string
	Name            string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Location        string
	MaxCapacity     int
	RegisteredCount int
	Status          EventStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive reports whether the event accepts registrations.
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// HasFinished reports whether the event ended before the given instant.
func (e *Event) HasFinished(now time.Time) bool {
	return now.After(e.EndTime)
}

// HasCapacity reports whether at least one slot remains.
func (e *Event) HasCapacity() bool {
	return e.RegisteredCount < e.MaxCapacity
}

// AvailableSlots returns the number of free slots.
func (e *Event) AvailableSlots() int {
	return e.MaxCapacity - e.RegisteredCount
}

// OccupancyPercent returns registered/capacity as a percentage.
// Zero capacity yields 0 rather than dividing by zero.
func (e *Event) OccupancyPercent() float64 {
	if e.MaxCapacity == 0 {
		return 0
	}
	return float64(e.RegisteredCount) / float64(e.MaxCapacity) * 100
}
