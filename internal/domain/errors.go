package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrMissingIdentity means a caller that must be scoped to an identity did not supply one.
	ErrMissingIdentity = errors.New("missing identity")
	// ErrRetrievalFailed wraps store and transport failures while fetching logs.
	ErrRetrievalFailed = errors.New("retrieval failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// RetrievalError carries the underlying store error for a failed fetch.
// It matches both ErrRetrievalFailed and the wrapped cause.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("retrieval failed: %v", e.Err)
	}
	return fmt.Sprintf("retrieval failed: %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() []error { return []error{ErrRetrievalFailed, e.Err} }

// Detail returns the store's error message verbatim.
func (e *RetrievalError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// NewRetrievalError wraps err as a RetrievalError. A nil err yields nil.
func NewRetrievalError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RetrievalError{Op: op, Err: err}
}
