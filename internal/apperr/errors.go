// Package apperr holds the error kinds shared by the service layer and the
// HTTP boundary that translates them into responses.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrNotMember        = errors.New("access denied")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvariant        = errors.New("invariant violated")
)

// NotFound reports a missing entity within the caller's company scope
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Conflict reports a uniqueness or ownership conflict
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// InvalidState reports an operation the document's status does not allow
func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// FieldError names one failing input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation
type ValidationError struct {
	Causes []FieldError `json:"causes"`
}

// NewValidationError returns a ValidationError with a single cause
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Causes: []FieldError{{Field: field, Message: message}}}
}

// Add appends a failing field
func (e *ValidationError) Add(field, message string) {
	e.Causes = append(e.Causes, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no cause was recorded
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Causes) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		parts = append(parts, c.Field+": "+c.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps a ValidationError from err
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsNotFound reports whether err is a scoped not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
