package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// BusinessError is a rule violation whose message is safe to show to the caller.
type BusinessError struct {
	Message string
	Kind    error
}

func (e *BusinessError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Rule returns a 400-class business error with a custom message.
func Rule(message string) error {
	return &BusinessError{Message: message, Kind: ErrInvalidInput}
}

// NotFound returns a not-found error naming the missing resource.
func NotFound(message string) error {
	return &BusinessError{Message: message, Kind: ErrNotFound}
}

// Conflict reports a concurrent state change the caller can retry after
// reloading. Duplicates and other rule violations use Rule.
func Conflict(message string) error {
	return &BusinessError{Message: message, Kind: ErrConflict}
}

// Forbidden returns an authorization error with a custom message.
func Forbidden(message string) error {
	return &BusinessError{Message: message, Kind: ErrForbidden}
}
