// Package errors provides the error taxonomy of the client SDK.
// Every failure surfaced by the HTTP layer is one of NetworkError, HTTPError or
// ParseError; the auth layer wraps them in AuthError.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors should be retried with exponential backoff.
	// Examples: 500 Internal Server Error, 429 Too Many Requests, connection refused.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors should fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request, attempt timeouts.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Sentinels matched by HTTPError.Is.
var (
	ErrUnauthorized = stderrors.New("unauthorized")
	ErrForbidden    = stderrors.New("forbidden")
	ErrNotFound     = stderrors.New("not found")
)

// NetworkError reports a failure below HTTP: connection refused, DNS, an
// attempt that exceeded its deadline, or a caller that gave up.
type NetworkError struct {
	Op       string // e.g. "GET /journal"
	Timeout  bool   // the per-attempt deadline fired
	Canceled bool   // the caller's context was canceled
	Err      error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	case e.Canceled:
		return fmt.Sprintf("%s: request aborted: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message is the backend-provided detail or
// a synthesized "HTTP error! status: N".
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
	Body       string // raw response body for debugging
	Category   ErrorCategory
}

func (e *HTTPError) Error() string { return e.Message }

// Is lets callers compare against ErrUnauthorized, ErrForbidden and ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ParseError is a 2xx response whose body is not valid JSON for the
// expected envelope.
type ParseError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response body (status %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AuthError wraps login and registration failures. Message is what a user
// should see; Err keeps the classified cause (nil for client-side validation).
type AuthError struct {
	Op      string // "login", "register", "refresh"
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// IsAborted reports whether err is an attempt that was cut short by its
// deadline or by the caller.
func IsAborted(err error) bool {
	var ne *NetworkError
	return stderrors.As(err, &ne) && (ne.Timeout || ne.Canceled)
}

// IsIrrecoverable reports whether err is not worth replaying even against a
// healthy server: aborted attempts, 4xx other than 408 and 429, and parse
// errors.
func IsIrrecoverable(err error) bool {
	var ne *NetworkError
	if stderrors.As(err, &ne) {
		return ne.Timeout || ne.Canceled
	}
	var he *HTTPError
	if stderrors.As(err, &he) {
		return he.Category == Irrecoverable
	}
	// Parse errors happen after the server accepted the request; replaying a
	// write could duplicate it.
	var pe *ParseError
	return stderrors.As(err, &pe)
}

// IsTimeout reports whether err is an attempt that hit its deadline.
func IsTimeout(err error) bool {
	var ne *NetworkError
	return stderrors.As(err, &ne) && ne.Timeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if stderrors.As(err, &he) {
		return he.StatusCode
	}
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// Message returns the human-readable message for err. Auth and HTTP errors
// carry backend-provided text; everything else falls back to Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if stderrors.As(err, &ae) {
		return ae.Message
	}
	var he *HTTPError
	if stderrors.As(err, &he) {
		return he.Message
	}
	return err.Error()
}
