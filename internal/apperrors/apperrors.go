// Package apperrors defines the typed error taxonomy shared by the lookup,
// playback and session layers. Expected outcomes (not-found, access-denied)
// are returned as typed errors, never panics; only genuinely exceptional
// conditions (backend unreachable, malformed data) wrap an underlying cause.
package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for HTTP mapping and user-facing handling.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAccessDenied    Code = "ACCESS_DENIED"
	CodePremiumRequired Code = "PREMIUM_REQUIRED"
	CodeNetworkError    Code = "NETWORK_ERROR"
	CodeTimeout         Code = "TIMEOUT"
	CodeInvalidURL      Code = "INVALID_URL"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Sentinel errors for expected outcomes.
var (
	// ErrNotFound collapses "row absent" and "row invisible to the caller"
	// into one outcome so that existence is not leaked to unauthorized
	// viewers.
	ErrNotFound = &AppError{Code: CodeNotFound, Message: "video not found"}

	// ErrAccessDenied is returned when playback resolution is attempted
	// against a denying verdict.
	ErrAccessDenied = &AppError{Code: CodeAccessDenied, Message: "access denied"}
)

// AppError carries a classification code, a user-safe message and optional
// per-field details for validation failures.
type AppError struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches two AppErrors by code, so errors.Is(err, ErrNotFound) works for
// any NOT_FOUND regardless of message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New builds an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap builds an AppError around an underlying cause.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

// NewValidation builds a field-tagged validation error identifying which
// parameter failed and what the allowed set or range is.
func NewValidation(field, allowed string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value for %q", field),
		Details: map[string]string{field: allowed},
	}
}

// CodeOf extracts the classification code from err, or CodeInternal when err
// is not an AppError.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
