package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request that is missing a required field or carries a bad value.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized covers bad credentials and missing sessions.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden covers role and ownership violations.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key (user email) is already taken.
	ErrConflict = errors.New("conflict")

	ErrSelfDelete = &Error{Kind: ErrForbidden, Msg: "Cannot delete yourself"}
	ErrLastAdmin  = &Error{Kind: ErrForbidden, Msg: "Cannot delete the last admin"}
)

// Error carries a caller-facing message and unwraps to one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return Errorf(ErrValidation, format, args...)
}
