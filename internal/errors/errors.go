package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeTransient indicates a collaborator failure (timeout or network)
	// that should be treated as "not yet available" and retried or degraded.
	ErrCodeTransient ErrorCode = "transient"
	// ErrCodeCredentialRejected indicates the identity provider rejected
	// the supplied credentials. The only error category surfaced to users.
	ErrCodeCredentialRejected ErrorCode = "credential_rejected"
	// ErrCodeProvisioning indicates profile or credits row creation failed
	// during signup. Logged, never surfaced.
	ErrCodeProvisioning ErrorCode = "provisioning"
	// ErrCodeInconsistentState indicates an authenticated state without a
	// user. Gates resolve it via redirect and reset, never by throwing.
	ErrCodeInconsistentState ErrorCode = "inconsistent_state"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Transient creates a new Transient collaborator error.
func Transient(message string) *AppError {
	return &AppError{Code: ErrCodeTransient, Message: message}
}

// CredentialRejected creates a new CredentialRejected error.
func CredentialRejected(message string) *AppError {
	return &AppError{Code: ErrCodeCredentialRejected, Message: message}
}

// Provisioning creates a new Provisioning error.
func Provisioning(message string) *AppError {
	return &AppError{Code: ErrCodeProvisioning, Message: message}
}

// InconsistentState creates a new InconsistentState error.
func InconsistentState(message string) *AppError {
	return &AppError{Code: ErrCodeInconsistentState, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsTransient reports whether an error should be absorbed as a transient
// collaborator failure. Timeouts and cancellations count: the loser of a
// bounded race is "not yet available", not broken.
func IsTransient(err error) bool {
	return isCode(err, ErrCodeTransient) || isCode(err, ErrCodeTimeout) || isCode(err, ErrCodeCanceled)
}

// IsCredentialRejected checks if an error is a CredentialRejected error.
func IsCredentialRejected(err error) bool {
	return isCode(err, ErrCodeCredentialRejected)
}

// IsProvisioning checks if an error is a Provisioning error.
func IsProvisioning(err error) bool {
	return isCode(err, ErrCodeProvisioning)
}

// IsInconsistentState checks if an error is an InconsistentState error.
func IsInconsistentState(err error) bool {
	return isCode(err, ErrCodeInconsistentState)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool {
	return isCode(err, ErrCodeCanceled)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
