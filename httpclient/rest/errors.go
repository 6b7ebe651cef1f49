package rest

import "github.com/kbukum/restkit/errors"

// ServerError is a typed view of a SERVER_FAILURE error.
type ServerError struct {
	Method string
	URL    string
	Status int
	Errors []string
}

// AsServerError extracts the server failure carried by err.
func AsServerError(err error) (*ServerError, bool) {
	appErr, ok := errors.As(err)
	if !ok || appErr.Code != errors.ErrCodeServerFailure {
		return nil, false
	}
	se := &ServerError{Status: appErr.Status}
	se.Method, _ = appErr.Details["method"].(string)
	se.URL, _ = appErr.Details["url"].(string)
	se.Errors, _ = appErr.Details["errors"].([]string)
	return se, true
}

// IsServerFailure reports whether err is an envelope status >= 500.
func IsServerFailure(err error) bool { return errors.Is(err, errors.ErrCodeServerFailure) }

// IsProtocolViolation reports whether the response was not a valid envelope.
func IsProtocolViolation(err error) bool { return errors.Is(err, errors.ErrCodeProtocolViolation) }

// IsRetryable reports whether the error can be retried.
func IsRetryable(err error) bool { return errors.IsRetryable(err) }

// IsTimeout reports whether the request context expired.
func IsTimeout(err error) bool { return errors.Is(err, errors.ErrCodeTimeout) }
