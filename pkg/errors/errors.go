package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used across all packages. Every failure surfaced by the
// privileged-operation layer maps onto exactly one of these.
const (
	// Generic errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Unauthenticated: missing or invalid credential
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	// Forbidden: valid credential, insufficient role
	ErrCodeForbidden ErrorCode = "FORBIDDEN"

	// ValidationFailed: malformed or missing input
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Conflict: invariant violation, e.g. duplicate owner
	ErrCodeConflict ErrorCode = "CONFLICT"

	// NotFound: target resource absent
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ConfigMissing: required deployment configuration absent
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// Downstream: store or network failure, retryable
	ErrCodeDownstream ErrorCode = "DOWNSTREAM_ERROR"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetMessage extracts the human-readable message from an error.
// Unstructured errors fall back to a generic message so internal store
// details never leak into response bodies.
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDownstream:
		return http.StatusBadGateway
	case ErrCodeConfigMissing, ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// Unauthenticated creates an "unauthenticated" error
func Unauthenticated(message string) *Error {
	return New(ErrCodeUnauthenticated, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// InvalidInput creates a "validation failed" error for a single field
func InvalidInput(field, reason string) *Error {
	return Newf(ErrCodeValidationFailed, "invalid %s: %s", field, reason)
}

// Conflict creates a "conflict" error
func Conflict(message string) *Error {
	return New(ErrCodeConflict, message)
}

// NotFound creates a "not found" error
func NotFound(resourceType, identifier string) *Error {
	return Newf(ErrCodeNotFound, "%s not found: %s", resourceType, identifier)
}

// ConfigMissing creates a "config missing" error for a required setting
func ConfigMissing(setting string) *Error {
	return Newf(ErrCodeConfigMissing, "required configuration %s is not set", setting)
}

// Downstream wraps a store or network failure
func Downstream(err error, message string) *Error {
	return Wrap(err, ErrCodeDownstream, message)
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}
