// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"net/http"
)

// APIError represents an API error with status code and message.
type APIError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new API error.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// WrapAPIError wraps an error with API error information.
func WrapAPIError(err error, code, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Predefined API errors
var (
	ErrBadRequest     = NewAPIError("BAD_REQUEST", "Bad request", http.StatusBadRequest)
	ErrNotFound       = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternalServer = NewAPIError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)

	ErrTLEParse       = NewAPIError("TLE_PARSE", "Malformed TLE", http.StatusBadRequest)
	ErrStaleTimestamp = NewAPIError("TIMESTAMP_STALE", "Timestamp too far in the past", http.StatusBadRequest)
	ErrStaleTLE       = NewAPIError("TLE_STALE", "TLE epoch too old", http.StatusBadRequest)
	ErrInvalidWindow  = NewAPIError("INVALID_TIME_WINDOW", "Invalid time window", http.StatusBadRequest)
	ErrPropagation    = NewAPIError("PROPAGATION_FAILED", "Propagation failed", http.StatusInternalServerError)
	ErrModelInit      = NewAPIError("MODEL_INIT_FAILED", "Orbit model initialization failed", http.StatusInternalServerError)
	ErrUpstreamSource = NewAPIError("TLE_SOURCE", "TLE source unavailable", http.StatusBadGateway)
)
