package domain

import "time"

// DocumentType enumerates accepted identity document kinds.
type DocumentType string

const (
	DocumentTypeCC       DocumentType = "CC"
	DocumentTypeCE       DocumentType = "CE"
	DocumentTypeTI       DocumentType = "TI"
	DocumentTypePassport DocumentType = "PASSPORT"
)

// Participant is a person eligible to register for events.
// Email and the (document number, document type) pair are unique.
type Participant struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DocumentNumber string
	DocumentType   DocumentType
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name.
func (p *Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}
