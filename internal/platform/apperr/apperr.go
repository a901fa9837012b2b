// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for vnshelf.

It provides a rich error type that bridges the gap between low-level Source/Storage
errors and high-level outcomes (an HTTP response, or the failure line of an
ingestion run).

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Ingestion taxonomy: SOURCE_UNAVAILABLE, DECODE_ERROR, STORE_CONNECTION, WRITE_CONFLICT.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent reporting.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeDecode            = "DECODE_ERROR"
	CodeStoreConnection   = "STORE_CONNECTION"
	CodeWriteConflict     = "WRITE_CONFLICT"
)

// AppError is the canonical error type for vnshelf.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "WRITE_CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message,
// followed by the cause when one is attached.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Visual novel") // Returns "Visual novel not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// WriteConflict creates a 409 [AppError] for a write rejected by a store
// constraint. Inside an ingestion run it aborts and rolls back the batch.
func WriteConflict(cause error) *AppError {
	return &AppError{
		Code:       CodeWriteConflict,
		Message:    "Write rejected by a store constraint",
		HTTPStatus: http.StatusConflict,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// SourceUnavailable creates a 502 [AppError] for a transport failure or a
// non-success response from the remote catalog source.
func SourceUnavailable(cause error) *AppError {
	return &AppError{
		Code:       CodeSourceUnavailable,
		Message:    "Remote source unavailable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Decode creates a 502 [AppError] for a source response that is not in the
// expected structured format.
func Decode(cause error) *AppError {
	return &AppError{
		Code:       CodeDecode,
		Message:    "Malformed response from remote source",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// StoreConnection creates a 503 [AppError] for a database connection that
// cannot be acquired or was lost.
func StoreConnection(cause error) *AppError {
	return &AppError{
		Code:       CodeStoreConnection,
		Message:    "Store connection unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
