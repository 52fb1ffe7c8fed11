package httpclient

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Error is returned for responses outside the 2xx range.
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("http client error: status %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrHTTPClient) match status errors too.
func (e *Error) Is(target error) bool {
	return target == ErrHTTPClient
}

// NewError creates a new HTTP status error.
func NewError(statusCode int, response []byte) *Error {
	return &Error{StatusCode: statusCode, Response: response}
}

// IsHTTPError checks if an error is an HTTP status error.
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// redact drops the query string, which carries api secrets and access tokens.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
