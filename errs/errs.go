// Package errs provides the structured error type shared by every core
// component. Errors preserve a message and causal chain while carrying a
// Kind that callers use to decide how to surface a failure (validation
// error back to the caller, silent capability degradation, a worker
// execution failure folded into state, etc. — see §7).
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure so callers can decide how to react without
// parsing message text.
type Kind string

const (
	// KindValidation marks malformed input; surfaced to the caller as a
	// stream error event.
	KindValidation Kind = "validation"
	// KindCapabilityUnavailable marks a missing/misconfigured optional
	// dependency (cache, rule engine, search backend); callers degrade
	// silently and continue.
	KindCapabilityUnavailable Kind = "capability_unavailable"
	// KindWorkerExecution marks a failure caught inside a worker; it
	// becomes an authored assistant message plus a failed task step.
	KindWorkerExecution Kind = "worker_execution"
	// KindSupervisorDecision marks a failure caught inside the supervisor
	// node; it forces next=FINISH with metadata.error set.
	KindSupervisorDecision Kind = "supervisor_decision"
)

// Error represents a structured failure that preserves message, kind, and
// causal context while still implementing the standard error interface.
// Errors may nest via Cause to retain diagnostics across retries.
type Error struct {
	// Kind categorizes the failure for callers that branch on it.
	Kind Kind
	// Message is the human-readable summary of the failure.
	Message string
	// Cause links to the underlying error, enabling error chains with
	// errors.Is/As.
	Cause error
}

// New constructs an Error of the given kind with the provided message.
func New(kind Kind, message string) *Error {
	if message == "" {
		message = string(kind)
	}
	return &Error{Kind: kind, Message: message}
}

// Newf formats according to a format specifier and returns the result as an
// Error of the given kind.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap constructs an Error of the given kind that wraps an underlying error.
// If message is empty, the cause's message is reused.
func Wrap(kind Kind, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// KindOf extracts the Kind of err, walking the Unwrap chain. It returns
// ("", false) when neither err nor anything in its chain is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
