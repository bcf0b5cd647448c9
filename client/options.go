package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/client/internal/api"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
)

// Option configures a Client during construction in New.
//
// Options are applied before the HTTP executor is built, so the order in which
// they are passed only matters when two options touch the same field.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client. Per-attempt deadlines
// are still enforced through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithAttemptTimeout bounds each individual attempt (default 10s). A call
// that exceeds it is aborted and not retried.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("attempt timeout must be > 0")
		}
		c.attemptTimeout = d
		return nil
	}
}

// WithRetryPolicy replaces the whole retry policy. A nil Retryable keeps the
// default classification, which retries everything except aborted attempts;
// use RetryTransientOnly to stop on client errors.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) error {
		if p.MaxAttempts <= 0 {
			return fmt.Errorf("max attempts must be > 0")
		}
		c.policy = p
		return nil
	}
}

// WithMaxAttempts caps the attempts per call, including the first.
func WithMaxAttempts(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("max attempts must be > 0")
		}
		c.policy.MaxAttempts = n
		return nil
	}
}

// WithBackoff sets the doubling schedule: base, 2*base, 4*base... capped at
// maxInterval.
func WithBackoff(base, maxInterval time.Duration) Option {
	return func(c *Client) error {
		if base <= 0 {
			return fmt.Errorf("backoff base must be > 0")
		}
		if maxInterval < base {
			return fmt.Errorf("backoff max interval must be >= base")
		}
		c.policy.NewBackOff = retry.Exponential(base, maxInterval)
		return nil
	}
}

// WithLoginTransport selects how Login and Register reach the backend.
func WithLoginTransport(t LoginTransport) Option {
	return func(c *Client) error {
		parsed, err := api.ParseLoginTransport(string(t))
		if err != nil {
			return err
		}
		c.transport = parsed
		return nil
	}
}

// WithSession shares a session between clients or restores a persisted one.
func WithSession(s *Session) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("session must not be nil")
		}
		c.session = s
		return nil
	}
}

// WithHeader adds a header to every request. Per-call headers still win.
func WithHeader(key, value string) Option {
	return func(c *Client) error {
		if key == "" {
			return fmt.Errorf("header key must not be empty")
		}
		c.header.Set(key, value)
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// Do not enable this option in production environments as it dumps headers,
// including the bearer token, and bodies into the log.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

// WithRateLimit paces outgoing attempts with a token bucket.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rate limit needs rps > 0 and burst > 0")
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithTracerProvider records one span per logical call on tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) error {
		if tp == nil {
			return fmt.Errorf("tracer provider must not be nil")
		}
		c.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// WithToken seeds the session with an existing bearer token unless the
// session already holds one.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.seedToken = token
		return nil
	}
}
