package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidParameter signals malformed request parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrTimeout signals that the per-request deadline expired in a backend call.
	ErrTimeout = errors.New("search deadline exceeded")
	// ErrBackendUnavailable signals a catalog or index backend failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// FieldError describes a single offending request parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every offending parameter of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return ErrInvalidParameter.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidParameter }

// Add records a violation for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no violations were recorded.
// Returning the interface avoids the typed-nil trap in callers.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
