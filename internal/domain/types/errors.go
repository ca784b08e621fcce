package types

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrProfileNotFound      = errors.New("caregiver profile not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotFound             = errors.New("requested item not found")

	ErrUnauthenticated = errors.New("no authenticated actor")
)

// ValidationError reports the first violated constraint of a booking
// request. Field names the offending input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// InvalidTransitionError reports an illegal booking status change.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// InvalidTransition builds an InvalidTransitionError.
func InvalidTransition(from, to BookingStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// IsInvalidTransition reports whether err carries an InvalidTransitionError.
func IsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var t *InvalidTransitionError
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// CollaboratorError wraps a failure from an external collaborator
// (storage, broker, cache). The cause stays reachable through Unwrap so
// callers can retry or surface it; this layer applies no retry policy.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator wraps err as a CollaboratorError, passing nil through.
func Collaborator(name string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Collaborator: name, Err: err}
}
