package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the engine can report. Transports map
// kinds to their own status codes / error events.
type ErrorKind string

const (
	OutOfTurn          ErrorKind = "out_of_turn"
	InvalidState       ErrorKind = "invalid_state"
	InsufficientFunds  ErrorKind = "insufficient_funds"
	OwnershipViolation ErrorKind = "ownership_violation"
	NotFound           ErrorKind = "not_found"
	AlreadyActive      ErrorKind = "already_active"
)

type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
