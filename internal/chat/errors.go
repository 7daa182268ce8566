package chat

import (
	"errors"
	"fmt"
)

// ErrForbidden rejects a mutation issued by anyone but the message's
// author (or, for system messages, a non-admin).
var ErrForbidden = errors.New("forbidden")

// ValidationError rejects a command before any side effect runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
