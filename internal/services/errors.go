package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every public operation returns one of these (possibly wrapped
// with a human message); handlers map kinds to HTTP statuses without ever
// exposing storage detail.
var (
	ErrNotFound    = errors.New("record not found")
	ErrForbidden   = errors.New("not allowed")
	ErrValidation  = errors.New("invalid input")
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("too many requests")
)

// validationError wraps ErrValidation with a field-specific message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ActiveApplicationError rejects a second intake while one application is
// still PENDING or NEEDS_INFO for the same user.
type ActiveApplicationError struct {
	ApplicationID string
	Status        string
}

func (e *ActiveApplicationError) Error() string {
	return fmt.Sprintf("an active application already exists (%s)", e.Status)
}

func (e *ActiveApplicationError) Unwrap() error {
	return ErrConflict
}
