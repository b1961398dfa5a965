package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnavailable     = errors.New("unavailable")
	ErrNotFound        = errors.New("not found")
	ErrInvalidToken    = errors.New("invalid token")
)

// Uniqueness violations reported by the service and by stores.
const (
	MsgEmailExists = "Email already exist"
	MsgPhoneExists = "Phone number already exist"
)

// Error is a user-facing failure. Error returns the human-readable message and
// Unwrap returns the sentinel kind, so errors.Is(err, ErrConflict) holds.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError attaches the underlying cause; it is kept for logs and never shown to callers.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable marks a backing-store or transport failure.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
