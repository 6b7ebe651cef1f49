package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Status is the status associated with the failure, if any. For
	// SERVER_FAILURE it is the envelope status, not the transport status.
	Status int `json:"status,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an ErrorCode equal to e.Code or an *AppError
// with the same code. This lets callers write errors.Is(err, ErrCodeTimeout).
func (e *AppError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *AppError:
		return t != nil && e.Code == t.Code
	}
	return false
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Error makes ErrorCode usable as a sentinel with errors.Is.
func (c ErrorCode) Error() string { return string(c) }

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Is reports whether any error in err's chain is an *AppError with the given code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is an *AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Retryable
}

// As converts an error to an AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// --- Constructors ---

// Transport creates an error for an exchange that could not complete.
func Transport(method, url string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("%s %s: exchange failed", method, url),
		Retryable: true,
		Details:   map[string]any{"method": method, "url": url},
		Cause:     cause,
	}
}

// Timeout creates an error for an exchange cut short by its context.
func Timeout(method, url string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("%s %s: request timed out", method, url),
		Retryable: true,
		Details:   map[string]any{"method": method, "url": url},
		Cause:     cause,
	}
}

// Protocol creates an error for a response that violates the wire contract.
func Protocol(message string) *AppError {
	return &AppError{
		Code:    ErrCodeProtocolViolation,
		Message: message,
	}
}

// ContentTypeMismatch creates a protocol error naming the expected and actual
// content types. An empty actual value is reported as "undefined".
func ContentTypeMismatch(expected, actual string) *AppError {
	if actual == "" {
		actual = "undefined"
	}
	return Protocol(fmt.Sprintf("invalid \"Content-Type\" header returned from server; expected %q, got %q", expected, actual)).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// ServerFailure creates an error for an envelope whose status is >= 500.
func ServerFailure(method, url string, status int, messages []string) *AppError {
	joined := strings.Join(messages, "; ")
	if joined == "" {
		joined = "no error details"
	}
	return &AppError{
		Code:    ErrCodeServerFailure,
		Message: fmt.Sprintf("%s %s failed with status %d: %s", method, url, status, joined),
		Status:  status,
		Details: map[string]any{
			"method": method,
			"url":    url,
			"status": status,
			"errors": messages,
		},
	}
}

// InvalidRequest creates an error for a request that could not be built.
func InvalidRequest(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Cause:   cause,
	}
}

// ServiceUnavailable creates an error for a request refused before sending.
func ServiceUnavailable(name string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("%s is temporarily unavailable", name),
		Retryable: true,
		Details:   map[string]any{"service": name},
		Cause:     cause,
	}
}

// StorageUnavailable creates an error describing why a medium was rejected.
func StorageUnavailable(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeStorageUnavailable,
		Message: "persistent storage is not available",
		Cause:   cause,
	}
}
