package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/salespulse/internal/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Write encodes body as the JSON response
func Write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(body)
}

// JSON sends a success response
func JSON(w http.ResponseWriter, status int, data any) {
	Write(w, status, Response{Success: true, Data: data})
}

// WithMessage sends a success response carrying a message
func WithMessage(w http.ResponseWriter, status int, data any, message string) {
	Write(w, status, Response{Success: true, Data: data, Message: message})
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, message string, details any) {
	Write(w, status, Response{Success: false, Error: message, Details: details})
}

// Fail maps err onto the error envelope. Internal error details are only
// written when exposeInternal is set.
func Fail(w http.ResponseWriter, err error, exposeInternal bool) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		appErr = domain.Internal("internal server error", err)
	}

	status := appErr.Kind.HTTPStatus()
	message := appErr.Message
	var details any
	if len(appErr.Fields) > 0 {
		details = appErr.Fields
	}

	if appErr.Kind == domain.KindInternal {
		message = "internal server error"
		if exposeInternal && appErr.Err != nil {
			details = appErr.Error()
		}
	}

	Error(w, status, message, details)
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with data
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// TooManyRequests sends the fixed rate limit rejection body
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many requests, please try again later.", nil)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message, nil)
}
