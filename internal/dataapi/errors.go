package dataapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the data API client has no base URL.
	ErrNotConfigured = errors.New("data API client not configured")
)

// APIError is a non-2xx answer from the data service.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("data service returned %d: %s", e.StatusCode, e.Body)
}
