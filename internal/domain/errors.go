package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of a domain failure so callers can
// branch on it without parsing strings.
type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeInvalidArgument      ErrorCode = "INVALID_ARGUMENT"
	ErrCodeInvalidState         ErrorCode = "INVALID_STATE"
	ErrCodeNotAvailable         ErrorCode = "NOT_AVAILABLE"
	ErrCodeConflictingAssignment ErrorCode = "CONFLICTING_ASSIGNMENT"
	ErrCodeInvalidConfig        ErrorCode = "INVALID_CONFIG"
	ErrCodeUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"
)

// Error is the typed failure surfaced by every domain and service operation.
// It carries the fields individual error kinds need (reason text, the
// conflicting assignment ID, a required break) without needing a different
// Go type per kind.
type Error struct {
	Code                  ErrorCode
	Message               string
	Reason                string
	ConflictingAssignment string
	RequiredBreakMinutes  int
	Degraded              bool
	cause                 error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrNotFound) style sentinels work against the Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newErr(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func NotFound(msg string) *Error {
	return newErr(ErrCodeNotFound, msg)
}

func InvalidArgument(msg string) *Error {
	return newErr(ErrCodeInvalidArgument, msg)
}

func InvalidState(msg string) *Error {
	return newErr(ErrCodeInvalidState, msg)
}

func NotAvailable(reason string) *Error {
	e := newErr(ErrCodeNotAvailable, "slot is not available")
	e.Reason = reason
	return e
}

func NotAvailableWithBreak(reason string, requiredBreakMinutes int) *Error {
	e := NotAvailable(reason)
	e.RequiredBreakMinutes = requiredBreakMinutes
	return e
}

func ConflictingAssignment(assignmentID string) *Error {
	e := newErr(ErrCodeConflictingAssignment, "overlaps an existing assignment")
	e.ConflictingAssignment = assignmentID
	return e
}

func InvalidConfig(msg string) *Error {
	return newErr(ErrCodeInvalidConfig, msg)
}

func UpstreamUnavailable(msg string, cause error) *Error {
	e := newErr(ErrCodeUpstreamUnavailable, msg)
	e.Degraded = true
	e.cause = cause
	return e
}

// Wrap attaches a cause to an existing domain error without discarding its code.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// CodeOf extracts the ErrorCode from err, or "" if err isn't a *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
