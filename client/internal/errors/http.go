package errors

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// messagePaths are tried in order against an error body. FastAPI validation
// errors put a list under "detail", hence detail.0.msg.
var messagePaths = []string{"detail", "detail.0.msg", "message", "error"}

// ClassifyHTTPError determines whether an HTTP error should be retried and
// extracts the human-readable message from its body.
// - 4xx client errors (except 408 and 429) are irrecoverable
// - 5xx server errors are recoverable
func ClassifyHTTPError(op string, statusCode int, body []byte) *HTTPError {
	return &HTTPError{
		Op:         op,
		StatusCode: statusCode,
		Message:    MessageFromBody(statusCode, body),
		Body:       string(body),
		Category:   getHTTPErrorCategory(statusCode),
	}
}

// MessageFromBody returns the first non-empty string found under the known
// message fields, or "HTTP error! status: N" when the body is not JSON or has
// no usable field.
func MessageFromBody(statusCode int, body []byte) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		for _, path := range messagePaths {
			r := gjson.GetBytes(body, path)
			if r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	return FallbackMessage(statusCode)
}

// FallbackMessage is the message used when the backend sent no detail.
func FallbackMessage(statusCode int) string {
	return fmt.Sprintf("HTTP error! status: %d", statusCode)
}

// getHTTPErrorCategory maps HTTP status codes to error categories.
func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes (1xx, 3xx that escaped redirects) - be conservative and retry
		return Recoverable
	}
}

// NewNetworkError creates a classified error for transport-level failures.
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// NewTimeoutError marks an attempt that exceeded its deadline.
func NewTimeoutError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Timeout: true, Err: err}
}

// NewCanceledError marks a call whose parent context was canceled.
func NewCanceledError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Canceled: true, Err: err}
}
