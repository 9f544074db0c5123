package wikidata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse is returned when a response lacks the expected
	// structure, e.g. SPARQL JSON without results.bindings.
	ErrInvalidResponse = errors.New("invalid response from Wikidata")

	// ErrEmptyQuery is returned for an empty SPARQL query.
	ErrEmptyQuery = errors.New("empty SPARQL query")

	// ErrNotLoggedIn is returned by editing calls made before Login.
	ErrNotLoggedIn = errors.New("not logged in to Wikidata")

	// ErrLoginFailed is returned when the action API rejects the login.
	ErrLoginFailed = errors.New("Wikidata login failed")
)

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.URL, e.StatusCode, body)
}

// APIError is an error object returned by the action API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("action API error %s: %s", e.Code, e.Info)
}

// sessionErrorCodes are action API codes meaning the login session or
// its CSRF token expired.
var sessionErrorCodes = map[string]bool{
	"badtoken":         true,
	"notloggedin":      true,
	"assertuserfailed": true,
	"assertbotfailed":  true,
}

// IsSessionError reports whether err means the caller has to log in again
// before editing.
func IsSessionError(err error) bool {
	if errors.Is(err, ErrNotLoggedIn) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && sessionErrorCodes[apiErr.Code]
}
