package cloud

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrUnauthorized is returned when the backend rejects the API token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a deployment does not exist.
	ErrNotFound = errors.New("deployment not found")

	// ErrConnectionFailed is returned when the backend cannot be reached.
	ErrConnectionFailed = errors.New("cloud connection failed")
)

// APIError wraps a non-2xx backend response with its status code and the
// backend's message, passed through unmodified for diagnosis.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cloud API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cloud API error %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an APIError, wrapping the matching sentinel for status
// codes callers branch on.
func NewAPIError(statusCode int, message string) *APIError {
	var err error
	switch statusCode {
	case http.StatusUnauthorized:
		err = ErrUnauthorized
	case http.StatusNotFound:
		err = ErrNotFound
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
