// Package apperr defines the outcome taxonomy shared by the auth, service and transport layers.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failed operation.
type Code int

const (
	CodeInternal Code = iota
	CodeUnauthenticated
	CodeForbidden
	CodeNotFound
	CodeConflict
	CodeInvariant
	CodeInvalid
)

func (c Code) String() string {
	switch c {
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeForbidden:
		return "forbidden"
	case CodeNotFound:
		return "not found"
	case CodeConflict:
		return "conflict"
	case CodeInvariant:
		return "invariant violation"
	case CodeInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error is a typed outcome with a short client-facing message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrInvariant       = &Error{Code: CodeInvariant}
	ErrInvalid         = &Error{Code: CodeInvalid}
)

func newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...any) error {
	return newf(CodeUnauthenticated, format, args...)
}

func Forbidden(format string, args ...any) error { return newf(CodeForbidden, format, args...) }

func NotFound(format string, args ...any) error { return newf(CodeNotFound, format, args...) }

func Conflict(format string, args ...any) error { return newf(CodeConflict, format, args...) }

func Invariant(format string, args ...any) error { return newf(CodeInvariant, format, args...) }

func Invalid(format string, args ...any) error { return newf(CodeInvalid, format, args...) }

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message returns the client-facing message for err. Invariant violations and errors
// outside the taxonomy collapse to a generic message so internal causes never reach
// the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInvariant {
		return e.Error()
	}
	return "internal server error"
}
