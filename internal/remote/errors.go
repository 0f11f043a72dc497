package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a rejection from the remote data service.
//
// Errors are classified as transient or permanent. Transient errors
// (network failures, timeouts, 5xx responses) are expected to succeed on a
// later retry and are safe to queue. Permanent errors (constraint
// violations, malformed payloads, auth failures) will fail identically on
// every retry and must be surfaced to the caller instead of queued.
type Error struct {
	// Status is the HTTP status code, or 0 for errors that never reached
	// the service (DNS failure, connection refused, timeout).
	Status int

	// Code is the service's machine-readable error code, when present.
	Code string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote unreachable: %s", e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("remote rejected (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote rejected (%d): %s", e.Status, e.Message)
}

// Transient reports whether a retry of the same request may succeed.
//
// Status 0 means the request never reached the service, so the failure is
// a network condition. 408 and 429 are explicit retry signals. All 5xx
// responses are treated as server-side trouble. Everything else (the 4xx
// class) is a deterministic rejection.
func (e *Error) Transient() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err should be retried later.
// Uses errors.As to handle wrapped errors. Errors that are not *Error
// (raw transport errors, context cancellation) are treated as transient:
// nothing about them proves a retry is futile.
func IsTransient(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Transient()
	}
	return true
}

// NewUnreachableError creates an Error for a request that never produced
// an HTTP response.
func NewUnreachableError(cause error) *Error {
	return &Error{Message: cause.Error()}
}
