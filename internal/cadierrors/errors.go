// Package cadierrors defines the closed error taxonomy every CADI
// surface-facing operation reports through.
package cadierrors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds a CADI operation may surface.
// Every agent-facing error carries exactly one Kind.
type Kind string

const (
	NotFound            Kind = "NotFound"
	StorageFull         Kind = "StorageFull"
	IOFailure           Kind = "IOFailure"
	ParseError          Kind = "ParseError"
	CycleDetected       Kind = "CycleDetected"
	ReferenceHeld       Kind = "ReferenceHeld"
	InvalidInput        Kind = "InvalidInput"
	ProviderUnavailable Kind = "ProviderUnavailable"
	Truncated           Kind = "Truncated"
)

// Error is a typed, wrapped error carrying one Kind plus a human message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a *Error wrapping cause. If cause is nil, returns nil, matching
// the convention callers use at the end of a function: `return cadierrors.Wrap(...)`.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, returning ("", false) if err is not (or
// does not wrap) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
