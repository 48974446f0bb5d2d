package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("event", nil), "NOT_FOUND", http.StatusNotFound},
		{NewBusinessRule("regla violada"), "BUSINESS_RULE_VIOLATION", http.StatusUnprocessableEntity},
		{NewDuplicateResource("participant", "email", "a@b.co"), "DUPLICATE_RESOURCE", http.StatusConflict},
		{NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("not allowed"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("version clash", nil), "CONFLICT", http.StatusConflict},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var domainErr *DomainError
		require.ErrorAs(t, tc.err, &domainErr)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
	}
}

func TestBusinessRuleMessageIsVerbatim(t *testing.T) {
	err := NewBusinessRule("El evento ha alcanzado su capacidad máxima")
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "El evento ha alcanzado su capacidad máxima", domainErr.Message)
	assert.Equal(t, "El evento ha alcanzado su capacidad máxima", domainErr.Error())
}

func TestDuplicateResourceDetails(t *testing.T) {
	err := NewDuplicateResource("participant", "email", "ana@example.com")
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "email", domainErr.Details["field"])
	assert.Equal(t, "ana@example.com", domainErr.Details["value"])
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	passthrough := NewBusinessRule("regla")
	assert.Same(t, passthrough, error(ToDomainError(passthrough)))

	noRows := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", noRows.Code)

	generic := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", generic.Code)
	assert.Equal(t, http.StatusInternalServerError, generic.HTTPStatus)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
}
