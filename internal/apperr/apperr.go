// Package apperr defines the error taxonomy shared across the portal
// core. Every failure crossing a package boundary is one of four
// kinds, each carrying an HTTP-equivalent status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// KindConfiguration is a fatal construction-time failure: required
	// wiring (index names, endpoints) is missing. Never retryable.
	KindConfiguration Kind = iota + 1
	// KindInvalidArgument is a caller error detected before any
	// network round-trip.
	KindInvalidArgument
	// KindNotFound means a well-formed query legitimately matched no
	// record. Distinct from execution failure.
	KindNotFound
	// KindSearchExecution means the index call itself failed; the
	// original cause is always wrapped.
	KindSearchExecution
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindSearchExecution:
		return "search_execution"
	}
	return "unknown"
}

func (k Kind) status() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSearchExecution:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error is a tagged error with an explicit kind and status code,
// optionally wrapping a cause.
type Error struct {
	Kind    Kind
	Status  int
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

// New builds an error of the given kind with its default status.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Status: kind.status(), Message: message}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Status: kind.status(), Message: message, Err: err}
}

// StatusOf returns the status carried by err, or 500 when err carries
// none. Services re-raise DAL failures through this rather than
// re-interpreting kinds.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status > 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// IsKind reports whether err is (or wraps) an Error of kind k.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
