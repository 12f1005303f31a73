package apicaller

import (
	"errors"
	"fmt"
	"strings"
)

// ResponseStatusError reports an exchange that completed with a non-2xx status.
type ResponseStatusError struct {
	StatusCode int
	Status     string
	// Body holds a short prefix of the response body for diagnostics.
	Body string
}

func (e *ResponseStatusError) Error() string {
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}

// ParseError reports a response body that is not valid JSON.
type ParseError struct {
	Err  error
	Body string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse json response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusCode extracts the status carried by a *ResponseStatusError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var se *ResponseStatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// IsParseError reports whether err is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsTransportError reports whether err came from the transport itself,
// i.e. the exchange never produced a response.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := StatusCode(err); ok {
		return false
	}
	return !IsParseError(err)
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
