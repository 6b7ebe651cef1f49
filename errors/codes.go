package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeTransportFailed indicates the HTTP exchange could not complete.
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"
	// ErrCodeTimeout indicates the request context expired before completion.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeServiceUnavailable indicates a client-side guard (circuit breaker)
	// refused to send the request.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Response errors
const (
	// ErrCodeProtocolViolation indicates the response was not the expected
	// JSON envelope (wrong content type, malformed body, missing status).
	ErrCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"
	// ErrCodeServerFailure indicates the envelope reported a status >= 500.
	ErrCodeServerFailure ErrorCode = "SERVER_FAILURE"
)

// Local errors
const (
	// ErrCodeInvalidRequest indicates the request could not be built.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeStorageUnavailable indicates the persistence medium is unusable.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportFailed:    true,
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
