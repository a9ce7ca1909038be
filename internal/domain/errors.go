package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code so wrapped copies compare equal to the
// package sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeDocumentTooLarge  = "DOCUMENT_TOO_LARGE"
	ErrCodeIndexUnavailable  = "INDEX_UNAVAILABLE"
	ErrCodeDimensionMismatch = "EMBEDDING_DIMENSION_MISMATCH"
	ErrCodeInvalidQuery      = "INVALID_QUERY"
	ErrCodeGenerationTimeout = "GENERATION_TIMEOUT"
	ErrCodeGenerationFailure = "GENERATION_FAILURE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Ingestion errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
	ErrDocumentTooLarge  = NewDomainError(ErrCodeDocumentTooLarge, "document exceeds the page limit")
	ErrEmptyDocument     = NewDomainError(ErrCodeValidation, "document contains no extractable text")
)

// Index errors
var (
	ErrIndexUnavailable  = NewDomainError(ErrCodeIndexUnavailable, "embedding index is unavailable")
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "embedding dimensionality does not match the index")
	ErrPartialDelete     = NewDomainError(ErrCodeInternalError, "index deletion removed fewer chunks than expected")
)

// Query errors
var (
	ErrInvalidQuery      = NewDomainError(ErrCodeInvalidQuery, "query text must not be empty")
	ErrGenerationTimeout = NewDomainError(ErrCodeGenerationTimeout, "answer generation timed out")
	ErrGenerationFailure = NewDomainError(ErrCodeGenerationFailure, "answer generation failed")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)
