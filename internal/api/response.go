// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeNotAuthenticated   = "NOT_AUTHENTICATED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ResponseWriter writes the Shelfwise JSON responses.
type ResponseWriter struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r}
}

// OK writes data as a plain 200 body. Reads use it.
func (rw *ResponseWriter) OK(data interface{}) {
	rw.writeJSON(http.StatusOK, data)
}

// Success writes the success envelope with the given status.
func (rw *ResponseWriter) Success(statusCode int, message string, data interface{}) {
	rw.writeJSON(statusCode, &models.APIResponse{
		Status:  models.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 envelope.
func (rw *ResponseWriter) Created(message string, data interface{}) {
	rw.Success(http.StatusCreated, message, data)
}

// Updated writes a 200 envelope.
func (rw *ResponseWriter) Updated(message string, data interface{}) {
	rw.Success(http.StatusOK, message, data)
}

// NoContent writes a 204 No Content response.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with per-field details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details map[string][]string) {
	rw.writeJSON(statusCode, &models.APIResponse{
		Status:  models.StatusError,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Details: details,
		},
	})
}

// ValidationError writes a 400 carrying every failing field.
func (rw *ResponseWriter) ValidationError(fe validation.FieldErrors) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, "Validation failed", fe)
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError logs err and writes a 500 without internals.
func (rw *ResponseWriter) InternalError(err error) {
	logging.CtxErr(rw.r.Context(), err).
		Str("method", rw.r.Method).
		Str("path", sanitizeLogValue(rw.r.URL.Path)).
		Msg("Request failed")
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred")
}

// ServiceUnavailable writes a 503 Service Unavailable error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// writeJSON writes JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteAuthError renders authentication and authorization failures in the
// error envelope. It satisfies auth.ErrorResponder.
func WriteAuthError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	NewResponseWriter(w, r).Error(statusCode, code, message)
}
