package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the core can report. Each kind maps to
// exactly one externally visible category at the HTTP boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindAlreadyExists
	KindInvalidCredentials
	KindInvalidInput
	KindTooManyAttempts
	KindHashing
	KindInvalidToken
)

var kindNames = map[ErrorKind]string{
	KindInternal:           "internal",
	KindUnauthorized:       "unauthorized",
	KindForbidden:          "forbidden",
	KindNotFound:           "not_found",
	KindAlreadyExists:      "already_exists",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidInput:       "invalid_input",
	KindTooManyAttempts:    "too_many_attempts",
	KindHashing:            "hashing",
	KindInvalidToken:       "invalid_token",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the tagged error returned by the core. Msg is safe to show to the
// caller; Err keeps the underlying cause for logs only.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden) holds
// for every forbidden decision regardless of its reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WrapError builds an Error of the given kind around cause.
func WrapError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf classifies err. Errors that did not originate in the core are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-safe message of err, or fallback when err is not
// an *Error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

var (
	ErrUnauthorized       = NewError(KindUnauthorized, "authentication required")
	ErrForbidden          = NewError(KindForbidden, "access forbidden")
	ErrUserNotFound       = NewError(KindNotFound, "user not found")
	ErrUserExists         = NewError(KindAlreadyExists, "user already exists")
	ErrInvalidCredentials = NewError(KindInvalidCredentials, "invalid credentials")
	ErrInvalidInput       = NewError(KindInvalidInput, "invalid input")
	ErrTooManyAttempts    = NewError(KindTooManyAttempts, "too many failed sign-in attempts")
	ErrHashing            = NewError(KindHashing, "password hashing failed")
	ErrInvalidToken       = NewError(KindInvalidToken, "invalid token")
)
