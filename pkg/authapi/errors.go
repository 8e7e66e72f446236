package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ============================================================================
// APIError - server-rejected requests
// ============================================================================

// APIError represents a request the service received and rejected, either a
// validation failure or a business-rule failure (duplicate email, wrong or
// expired OTP, unknown account). Message is the server-provided text and is
// safe to surface to the user.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Message is the human-readable message from the response envelope
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request rejected with status %d", e.StatusCode)
}

// ErrIncompletePayload is returned when the service reports success on a
// session-finalizing call but omits the user or token from the payload.
// Callers must treat this as a failed verification: no session was created.
var ErrIncompletePayload = errors.New("authapi: response missing user or token")

// ============================================================================
// Classification Helpers
// ============================================================================

// IsNetworkError reports whether err is a transport-level failure (timeout,
// DNS, refused connection) rather than a response from the service. Such
// errors carry no server message and should be surfaced as a general
// connectivity notice, never attached to a form field.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// parseErrorResponse turns a non-success response into a typed error.
// The service reports failures both as non-2xx statuses and as 200s with
// success=false, so both paths funnel through here.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
		}
	}

	// Fallback: envelope was absent or unreadable
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
