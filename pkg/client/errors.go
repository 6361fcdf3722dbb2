// pkg/client/errors.go
package client

import "fmt"

// AuthError means the request carried no valid credentials. Callers treat it
// as a signal to re-authenticate, not retry.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// NetworkError wraps transport failures: the request never produced an HTTP
// response, so retrying may succeed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a structured failure returned by the server. Code carries the
// machine-readable error code from the response envelope.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
	Payload    map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (HTTP %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// IsInsufficientCredits reports whether this failure is the distinguished
// not-enough-credits case, which callers route to the purchase flow.
func (e *APIError) IsInsufficientCredits() bool {
	return e.Code == "INSUFFICIENT_CREDITS"
}

// ValidationError is raised client-side before any request is sent, when an
// identity is missing a field its variant requires.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid asset identity: %s (%s)", e.Message, e.Field)
}
