// Package rest executes JSON requests against the backend: base URL
// resolution, default headers, bearer-token injection, a deadline per attempt,
// bounded retries and classification of every failure.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/client/internal/errors"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
)

const (
	// DefaultAttemptTimeout bounds a single attempt, including reading the body.
	DefaultAttemptTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// TokenSource supplies the bearer token for outgoing requests. An empty string
// means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Config wires an Executor.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Tokens         TokenSource
	Policy         retry.Policy
	AttemptTimeout time.Duration
	Header         http.Header   // client-wide headers applied after the defaults
	Limiter        *rate.Limiter // optional pacing before each attempt
	Tracer         trace.Tracer
}

// Executor is safe for concurrent use; calls share nothing except the
// read-only token source.
type Executor struct {
	base           string
	http           *http.Client
	tokens         TokenSource
	policy         retry.Policy
	attemptTimeout time.Duration
	header         http.Header
	limiter        *rate.Limiter
	tracer         trace.Tracer
}

// New validates cfg and returns an Executor.
func New(cfg Config) (*Executor, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", cfg.BaseURL)
	}

	e := &Executor{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		http:           cfg.HTTPClient,
		tokens:         cfg.Tokens,
		policy:         cfg.Policy,
		attemptTimeout: cfg.AttemptTimeout,
		header:         cfg.Header.Clone(),
		limiter:        cfg.Limiter,
		tracer:         cfg.Tracer,
	}
	if e.http == nil {
		e.http = &http.Client{}
	}
	if e.attemptTimeout <= 0 {
		e.attemptTimeout = DefaultAttemptTimeout
	}
	if e.policy.Retryable == nil {
		e.policy.Retryable = Retryable
	}
	if e.tracer == nil {
		e.tracer = defaultTracer()
	}
	return e, nil
}

// BaseURL returns the resolved base address without a trailing slash.
func (e *Executor) BaseURL() string { return e.base }

// Retryable is the default predicate. Only an attempt aborted by its
// deadline or by the caller stops the loop early; every other failure,
// including 4xx answers and malformed bodies, gets the full backoff schedule.
func Retryable(err error) bool {
	return !errors.IsAborted(err)
}

// RetryTransientOnly also stops on 4xx other than 408 and 429 and on parse
// errors. Set it as RetryPolicy.Retryable to avoid replaying requests the
// server already rejected or accepted.
func RetryTransientOnly(err error) bool {
	return !errors.IsIrrecoverable(err)
}

// Execute runs req under the retry policy and returns the raw JSON payload.
// An empty 2xx body yields a nil payload.
func (e *Executor) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	payload, _, err := e.execute(ctx, req)
	return payload, err
}

// Do runs req and decodes the payload into out when both are non-nil.
func (e *Executor) Do(ctx context.Context, req Request, out any) error {
	payload, status, err := e.execute(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &errors.ParseError{Op: req.op(), StatusCode: status, Err: err}
	}
	return nil
}

// Get issues a GET with no body.
func (e *Executor) Get(ctx context.Context, path string, out any) error {
	return e.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

// Post issues a POST with a JSON-encoded body.
func (e *Executor) Post(ctx context.Context, path string, body, out any) error {
	req, err := NewJSONRequest(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return e.Do(ctx, req, out)
}

// Put issues a PUT with a JSON-encoded body.
func (e *Executor) Put(ctx context.Context, path string, body, out any) error {
	req, err := NewJSONRequest(http.MethodPut, path, body)
	if err != nil {
		return err
	}
	return e.Do(ctx, req, out)
}

// Delete issues a DELETE with no body.
func (e *Executor) Delete(ctx context.Context, path string, out any) error {
	return e.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (e *Executor) execute(ctx context.Context, req Request) (json.RawMessage, int, error) {
	op := req.op()
	target := e.resolve(req.Path)
	requestID := uuid.NewString()

	ctx, span := startCallSpan(ctx, e.tracer, req, requestID)
	start := time.Now()

	policy := e.policy
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		retriesTotal.WithLabelValues(req.Method).Inc()
		log.Warn().
			Err(err).
			Str("op", op).
			Str("request_id", requestID).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("request failed, retrying")
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}
	}

	var (
		payload  json.RawMessage
		status   int
		attempts int
	)
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		attempts = attempt
		attemptsTotal.WithLabelValues(req.Method).Inc()
		p, s, err := e.attempt(ctx, op, target, req, requestID)
		if err != nil {
			return err
		}
		payload, status = p, s
		return nil
	})
	if err != nil && !classified(err) && isContextErr(err) {
		// Parent context ended between attempts.
		err = errors.NewCanceledError(op, err)
	}

	elapsed := time.Since(start)
	requestsTotal.WithLabelValues(req.Method, outcomeOf(err)).Inc()
	requestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
	endCallSpan(span, err, attempts)

	log.Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Bool("ok", err == nil).
		Msg("request finished")

	if err != nil {
		return nil, 0, err
	}
	return payload, status, nil
}

// attempt performs one HTTP round trip bounded by the attempt timeout.
func (e *Executor) attempt(ctx context.Context, op, target string, req Request, requestID string) (json.RawMessage, int, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, 0, errors.NewCanceledError(op, err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header = e.headers(req, requestID)
	injectTraceHeaders(ctx, httpReq.Header)

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return nil, 0, e.transportError(ctx, attemptCtx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, e.transportError(ctx, attemptCtx, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errors.ClassifyHTTPError(op, resp.StatusCode, raw)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, resp.StatusCode, nil
	}
	if !json.Valid(trimmed) {
		return nil, resp.StatusCode, &errors.ParseError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("invalid JSON (%d bytes)", len(trimmed)),
		}
	}
	return json.RawMessage(trimmed), resp.StatusCode, nil
}

// headers merges defaults, the bearer token, client-wide headers and the
// per-call overrides, in that order.
func (e *Executor) headers(req Request, requestID string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-Request-ID", requestID)
	if e.tokens != nil {
		if tok := e.tokens.Token(); tok != "" {
			h.Set("Authorization", "Bearer "+tok)
		}
	}
	overlay(h, e.header)
	overlay(h, req.Header)
	return h
}

func overlay(dst, src http.Header) {
	for k, vs := range src {
		key := http.CanonicalHeaderKey(k)
		dst.Del(key)
		for _, v := range vs {
			dst.Add(key, v)
		}
	}
}

func (e *Executor) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.base + path
}

// transportError separates a fired attempt deadline from a caller that gave up
// and from plain connection failures.
func (e *Executor) transportError(parent, attemptCtx context.Context, op string, err error) error {
	switch {
	case parent.Err() != nil:
		return errors.NewCanceledError(op, parent.Err())
	case stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return errors.NewTimeoutError(op, fmt.Errorf("no response within %s: %w", e.attemptTimeout, err))
	default:
		return errors.NewNetworkError(op, err)
	}
}

func classified(err error) bool {
	var (
		ne *errors.NetworkError
		he *errors.HTTPError
		pe *errors.ParseError
	)
	return stderrors.As(err, &ne) || stderrors.As(err, &he) || stderrors.As(err, &pe)
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var ne *errors.NetworkError
	if stderrors.As(err, &ne) {
		switch {
		case ne.Timeout:
			return outcomeTimeout
		case ne.Canceled:
			return outcomeCanceled
		}
		return outcomeNetwork
	}
	var pe *errors.ParseError
	if stderrors.As(err, &pe) {
		return outcomeParse
	}
	return outcomeHTTPError
}
