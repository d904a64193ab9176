package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthenticated
	KindInvalidArgument
	KindUnavailable
)

// Error is a kinded error raised by repositories and services. Handlers
// translate the kind to an HTTP status exactly once, at the boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }
func Unavailable(message string) *Error     { return New(KindUnavailable, message) }
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the boundary-safe message of err. Internal errors fall
// back to the given default so wrapped causes never leak to clients.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
