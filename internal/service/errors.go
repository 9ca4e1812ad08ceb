package service

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks a failed call to the generative backend. Its
	// message is the one shown to users; the cause is kept for logs.
	ErrTransport = errors.New("the assistant could not be reached, please try again")

	// ErrSuperseded is returned for a result that arrived after a newer
	// request from the same client slot; the result is discarded.
	ErrSuperseded = errors.New("request superseded by a newer one")

	ErrValidation = errors.New("invalid request")
)

// DomainError is a successful backend call that could not produce a
// confident result. Message is meant for the user.
type DomainError struct {
	Op      string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s failed: %w: %w", op, ErrTransport, err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
