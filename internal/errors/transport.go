package errors

import (
	stdErrors "errors"
	"fmt"
)

// TransportError covers every upstream failure that is not a confirmed absence:
// non-success HTTP statuses, connectivity problems, timeouts and undecodable bodies.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("request to %s failed with HTTP %d: %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("request to %s failed with HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError.
func NewTransportError(url string, statusCode int, err error) *TransportError {
	return &TransportError{URL: url, StatusCode: statusCode, Err: err}
}

// IsTransportError reports whether err is a TransportError (even when wrapped).
func IsTransportError(err error) bool {
	var te *TransportError
	return stdErrors.As(err, &te)
}
