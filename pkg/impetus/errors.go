package impetus

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for common API error conditions.
var (
	// ErrUnauthorized is returned when the server responds with 401 Unauthorized.
	ErrUnauthorized = errors.New("impetus: unauthorized")
	// ErrNotFound is returned when the server responds with 404 Not Found.
	ErrNotFound = errors.New("impetus: not found")
)

// APIError represents an error returned by the registration API.
// It implements the error interface and supports errors.Is() via Unwrap().
type APIError struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Message is the error message from the server.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("impetus: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the matching sentinel error for the status code,
// enabling errors.Is() checks against ErrUnauthorized and ErrNotFound.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	default:
		return nil
	}
}

// serverErrorResponse is used to parse the server's {"error": "..."} JSON body.
type serverErrorResponse struct {
	Error string `json:"error"`
}

// newAPIError parses the server error response body and returns a wrapped *APIError.
func newAPIError(statusCode int, body []byte) error {
	var resp serverErrorResponse
	msg := string(body)
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		msg = resp.Error
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
	}
}
