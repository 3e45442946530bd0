package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for ingestion validation failures.
var (
	ErrMissingField    = errors.New("required field missing")
	ErrBadDate         = errors.New("date does not parse as YYYYMMDD")
	ErrNegativeAmount  = errors.New("amount insured is negative")
	ErrNegativeAge     = errors.New("patient age is negative")
	ErrInvalidGender   = errors.New("patient gender is not M or F")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
