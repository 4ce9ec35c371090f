package authz

import (
	"errors"
	"fmt"
)

// Authorization errors.
var (
	// ErrAuthorizationFailed indicates that the authorization endpoint
	// could not be reached or did not approve the request.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrNoEndpoint indicates that no authorization URL was configured.
	ErrNoEndpoint = errors.New("authorization endpoint is required")
)

// Error describes a failed authorization call. StatusCode is zero when
// the endpoint could not be reached.
type Error struct {
	// URL is the authorization endpoint that was called.
	URL string

	// StatusCode is the response status of a denied request.
	StatusCode int

	// Cause is the transport error, if any.
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authorization failed: request to %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("authorization failed: %s returned status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports every Error as ErrAuthorizationFailed.
func (e *Error) Is(target error) bool {
	return target == ErrAuthorizationFailed
}

func newDeniedError(url string, status int) *Error {
	return &Error{URL: url, StatusCode: status}
}

func newTransportError(url string, cause error) *Error {
	return &Error{URL: url, Cause: cause}
}
