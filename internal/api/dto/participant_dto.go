package dto

import (
	"time"

	"github.com/spec-kit/eventia-service/internal/domain"
)

// CreateParticipantRequest payload.
type CreateParticipantRequest struct {
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	DocumentNumber string              `json:"document_number"`
	DocumentType   domain.DocumentType `json:"document_type"`
}

// UpdateParticipantRequest payload.
type UpdateParticipantRequest struct {
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	DocumentNumber string              `json:"document_number"`
	DocumentType   domain.DocumentType `json:"document_type"`
}

// ParticipantResponse standard participant representation.
type ParticipantResponse struct {
	ID             string              `json:"id"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	FullName       string              `json:"full_name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	DocumentNumber string              `json:"document_number"`
	DocumentType   domain.DocumentType `json:"document_type"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
