// Package apperror defines the error taxonomy shared by services, handlers and clients.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindHTTP         Kind = "http"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status for KindHTTP.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports a missing or malformed input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewNotFoundError reports that entity with the given id does not exist.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError reports a concurrent modification or a uniqueness violation.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewInvalidStateError reports an operation not allowed in the entity's current state.
func NewInvalidStateError(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func NewUnauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NewNetworkError wraps a transport failure (remote unreachable).
func NewNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network failure or backend unavailable", Err: err}
}

// NewTimeoutError wraps a request that took too long.
func NewTimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
}

// NewHTTPError reports a non-2xx response from a remote call.
func NewHTTPError(status int, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("HTTP error %d", status)
	}
	return &Error{Kind: KindHTTP, Status: status, Message: msg}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }

// IsRemote reports whether err came from a remote call (network, timeout or non-2xx).
func IsRemote(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindHTTP:
		return true
	}
	return false
}
