// Package apperrors defines the application error taxonomy and its mapping
// to HTTP status codes. Handlers translate every service failure into one of
// these kinds; nothing else reaches the client.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindValidation is malformed or missing input (400, field-level detail).
	KindValidation Kind = iota + 1
	// KindAuth is a missing/invalid/expired session or bad credentials (401).
	KindAuth
	// KindForbidden is an authenticated caller with the wrong role or
	// ownership (403).
	KindForbidden
	// KindNotFound is a referenced course/enrollment/user that is absent (404).
	KindNotFound
	// KindConflict is a duplicate email or duplicate enrollment (409).
	KindConflict
	// KindInternal is an unclassified server error (500, internals logged only).
	KindInternal
)

// Error is a classified application error with an optional field-keyed
// detail map for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error // wrapped cause, never shown to clients
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error with field-level detail.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Auth creates a 401 error. Messages stay deliberately vague.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden creates a 403 error naming the required role(s).
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal creates a 500 error wrapping its cause. The cause is logged
// server-side; the client sees only the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// HTTPStatus maps an error to its HTTP status code. Unclassified errors are
// treated as internal.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// FieldsOf returns the field-keyed detail map of a validation error, or nil.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
