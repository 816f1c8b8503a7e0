package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the server could not be reached or returned garbage.
	ErrNetwork = errors.New("network error")
	// ErrEndpointNotFound means the server has no such API route.
	ErrEndpointNotFound = errors.New("endpoint not found")
)

// APIError is a non-2xx response carrying the server's error message.
type APIError struct {
	StatusCode int
	Message    string
	Field      string // set for lead validation failures
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// StatusCode extracts the HTTP status from an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
