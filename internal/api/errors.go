package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired is returned when the backend rejected the session
	// token. The session has already been cleared when callers see it.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoToken means the login call succeeded without a token in the body.
	ErrNoToken = errors.New("login response carried no token")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
}

// NetworkError wraps a transport failure (dial, TLS, reset, cancelled context).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
