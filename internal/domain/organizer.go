package domain

import "time"

// Organizer is an administrative account allowed to manage events.
type Organizer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
