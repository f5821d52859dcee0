package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Custom error types for better error handling and categorization

// ValidationError represents errors from invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PayloadTooLargeError represents errors when request payload exceeds size limit
type PayloadTooLargeError struct {
	MaxSize    int64
	ActualSize int64
}

func (e *PayloadTooLargeError) Error() string {
	// ActualSize is unknown for chunked bodies
	if e.ActualSize <= 0 {
		return fmt.Sprintf("payload too large: maximum size is %d bytes", e.MaxSize)
	}
	return fmt.Sprintf("payload too large: maximum size is %d bytes, got %d bytes", e.MaxSize, e.ActualSize)
}

// NewPayloadTooLargeError creates a new payload too large error
func NewPayloadTooLargeError(maxSize, actualSize int64) *PayloadTooLargeError {
	return &PayloadTooLargeError{MaxSize: maxSize, ActualSize: actualSize}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPayloadTooLargeError checks if an error is a PayloadTooLargeError
func IsPayloadTooLargeError(err error) bool {
	var ptle *PayloadTooLargeError
	return errors.As(err, &ptle)
}

// HTTPStatusFromError returns the appropriate HTTP status code for an error
func HTTPStatusFromError(err error) int {
	switch {
	case IsValidationError(err):
		return http.StatusBadRequest
	case IsPayloadTooLargeError(err):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorFromError writes an error response based on the error type
func WriteErrorFromError(w http.ResponseWriter, err error) {
	WriteError(w, HTTPStatusFromError(err), err.Error())
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WritePartialSuccess writes the OTLP success acknowledgement body
func WritePartialSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"partialSuccess":{}}`))
}
