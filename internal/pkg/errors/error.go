package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict: resource already exists")
	ErrInternal          = errors.New("internal server error")
	ErrSessionExpired    = errors.New("session expired or invalid")
	ErrIdentityRequired  = errors.New("identity required for this operation")
	ErrUpdateInFlight    = errors.New("another update is already in flight")
	ErrInvalidTransition = errors.New("invalid wash request status transition")
	ErrNotAssigned       = errors.New("actor is not the assigned technician")
	ErrDecode            = errors.New("malformed record")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
