package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())

	withCause := NewDomainErrorWithCause(ErrCodeInternalError, "query failed", errors.New("connection reset"))
	assert.Equal(t, "[INTERNAL_ERROR] query failed: connection reset", withCause.Error())
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDomainErrorWithCause(ErrCodeIndexUnavailable, "index down", cause)

	assert.ErrorIs(t, err, cause)
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := NewDomainErrorWithCause(ErrCodeIndexUnavailable, "embedding backend rejected the request", errors.New("429"))

	assert.ErrorIs(t, wrapped, ErrIndexUnavailable)
	assert.NotErrorIs(t, wrapped, ErrInvalidQuery)
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("ingest doc-1: %w", ErrDocumentTooLarge)

	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, ErrCodeDocumentTooLarge, domainErr.Code)
}

func TestDomainError_IsRejectsNonDomainTarget(t *testing.T) {
	assert.NotErrorIs(t, ErrInvalidQuery, errors.New("query text must not be empty"))
}
