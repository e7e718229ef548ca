package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures for the HTTP error boundary
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInternal       ErrorKind = "internal"
)

// HTTPStatus returns the response status for the kind
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FieldError is a single rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried from services to the error boundary
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
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

// Unauthenticated returns a 401 error
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Forbidden returns a 403 error
func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Invalid returns a 400 error with optional field details
func Invalid(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// NotFound returns a 404 error. Rows outside the caller's workspace use the
// same error so their existence is not revealed.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict returns a 409 error
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps a persistence or infrastructure failure
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating unknown errors as internal
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
