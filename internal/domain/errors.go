package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by stores, policy and handlers. Handlers map these
// to status codes with errors.Is; anything else is an internal failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrDuplicateEmail  = errors.New("user already exists")
	ErrUnauthenticated = errors.New("not authorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal failure")

	// Token verification outcomes. The access gate collapses both into
	// ErrUnauthenticated before anything reaches a client.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// ValidationError carries a message that is safe to show the client.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrValidation) hold
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
