// ABOUTME: Standardized JSON responses for the backend API handlers.
// ABOUTME: Error bodies carry "msg" like the Flask backend plus a machine-readable code.

package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body of every backend endpoint. Msg is the
// human-readable message clients display; Code is stable for matching.
//
// Usage:
//
//	WriteError(w, http.StatusNotFound, ErrNotFound, "Proveedor no encontrado")
type ErrorResponse struct {
	Msg     string `json:"msg"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Field   string `json:"field,omitempty"`   // field that failed validation
	Details string `json:"details,omitempty"` // extra context, never shown to end users
}

// MessageResponse is the body of successful operations that return no entity.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// WriteError writes an error body with status.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Msg:    msg,
		Code:   code,
		Status: status,
	})
}

// WriteErrorWithField writes a validation error naming the offending field.
func WriteErrorWithField(w http.ResponseWriter, status int, code, msg, field string) {
	WriteJSON(w, status, ErrorResponse{
		Msg:    msg,
		Code:   code,
		Status: status,
		Field:  field,
	})
}

// WriteErrorWithDetails writes an error body with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, msg, details string) {
	WriteJSON(w, status, ErrorResponse{
		Msg:     msg,
		Code:    code,
		Status:  status,
		Details: details,
	})
}

// WriteMessage writes {"msg": msg} with status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Msg: msg})
}

// WriteJSON serializes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error codes used by the backend API
const (
	// Client errors (4xx)
	ErrInvalidRequest   = "invalid_request"
	ErrInvalidBody      = "invalid_request_body"
	ErrMissingField     = "missing_field"
	ErrValidationFailed = "validation_failed"
	ErrNotFound         = "not_found"
	ErrUnauthorized     = "unauthorized"
	ErrBadCredentials   = "bad_credentials"

	// Server errors (5xx)
	ErrInternal      = "internal_error"
	ErrDatabaseError = "database_error"
)
