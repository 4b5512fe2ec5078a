// Defines the errors returned by the client and fetcher.

package notion

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches every AuthError with errors.Is.
var ErrUnauthorized = errors.New("notion: unauthorized")

// Error is an error object returned by the Notion API.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// AuthError reports an invalid or expired integration token.
//
// The fetcher never retries or skips past it.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return "authentication failed: " + msg + "; check NOTION_TOKEN and that the integration has access to the workspace"
}

// Is makes errors.Is(err, ErrUnauthorized) true.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// FetchError is a failure to retrieve one entity. The fetcher reports it as
// a warning and skips the entity.
type FetchError struct {
	// Kind is "page", "database", "data source", "items" or "block".
	Kind string
	ID   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// isRetryable reports whether a response status is worth retrying.
func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}
