package game

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain errors for transport and logging.
type ErrorCode string

const (
	// ErrIllegalAction rejects an action from the wrong actor, in the wrong
	// phase, or with failed preconditions. Always recoverable; the game is
	// left untouched.
	ErrIllegalAction ErrorCode = "ILLEGAL_ACTION"
	// ErrInvalidConfiguration rejects malformed game options at creation.
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	// ErrResourceExhausted signals the deck and discard pile are both empty
	// on draw. Card accounting should make this impossible; if it happens
	// the game state can no longer be trusted.
	ErrResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"
	// ErrConcurrencyViolation rejects an action built against a state
	// version that has since changed. The client must resync.
	ErrConcurrencyViolation ErrorCode = "CONCURRENCY_VIOLATION"
)

// Error is a typed domain error returned synchronously to action submitters.
type Error struct {
	Code   ErrorCode
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Fatal reports whether the error invalidates the game state itself rather
// than just the rejected action.
func (e *Error) Fatal() bool {
	return e.Code == ErrResourceExhausted
}

func illegalf(format string, args ...any) error {
	return &Error{Code: ErrIllegalAction, Reason: fmt.Sprintf(format, args...)}
}

func invalidConfigf(format string, args ...any) error {
	return &Error{Code: ErrInvalidConfiguration, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the domain error code, or "" for non-domain errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
