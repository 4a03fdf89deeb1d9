// Package apperr defines the error taxonomy shared by stores, managers and
// handlers. Every failure that reaches an HTTP handler is translated to a
// status code through Status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the response translator.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInvalidCredentials
	KindInvalidPortfolioType
	KindMissingArguments
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindInvalidPortfolioType:
		return "InvalidPortfolioType"
	case KindMissingArguments:
		return "MissingArguments"
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "Internal"
	}
}

// Error is a classified application error. Message is safe to show to
// clients; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials")
}

func InvalidPortfolioType(portType string) *Error {
	return New(KindInvalidPortfolioType, "Portfolio does not have the proper type: %q", portType)
}

func MissingArguments(format string, args ...any) *Error {
	return New(KindMissingArguments, format, args...)
}

func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, format, args...)
}

func Unauthorized() *Error {
	return New(KindUnauthorized, "Not authorized to access this route")
}

func Forbidden(role string) *Error {
	return New(KindForbidden, "User role %s is not authorized to access this route", role)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(KindTooManyRequests, format, args...)
}

// KindOf reports the Kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidPortfolioType, KindMissingArguments, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Unclassified errors
// never leak their text.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Server Error"
}
