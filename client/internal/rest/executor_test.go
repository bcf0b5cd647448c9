package rest

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Cowspump/some-diploma-stuff/client/internal/errors"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
)

const testBase = 20 * time.Millisecond

type staticToken string

func (s staticToken) Token() string { return string(s) }

// waitRecorder captures the backoff waits scheduled by the retry loop.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) record(_ int, _ error, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits = append(w.waits, d)
}

func (w *waitRecorder) get() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

func newTestExecutor(t *testing.T, baseURL string, mutate ...func(*Config)) (*Executor, *waitRecorder) {
	t.Helper()
	rec := &waitRecorder{}
	cfg := Config{
		BaseURL:        baseURL,
		AttemptTimeout: time.Second,
		Policy: retry.Policy{
			MaxAttempts: 3,
			NewBackOff:  retry.Exponential(testBase, time.Second),
			OnRetry:     rec.record,
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e, rec
}

func TestExecute_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/journal", r.URL.Path)
		_, _ = w.Write([]byte(`{"journals":[{"id":1}]}`))
	}))
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL)
	payload, err := e.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/journal"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"journals":[{"id":1}]}`, string(payload))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.get())
}

func TestExecute_RetriesServerErrorsWithBackoff(t *testing.T) {
	t.Parallel()
	statuses := []int{http.StatusInternalServerError, http.StatusBadGateway}
	var calls int32
	var stamps []time.Time
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		if int(n) <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		_, _ = w.Write([]byte(`{"total_score":12}`))
	}))
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL)
	var out struct {
		TotalScore int `json:"total_score"`
	}
	require.NoError(t, e.Post(context.Background(), "/test/submit", map[string]any{"answers": map[string]int{"1": 0}}, &out))
	assert.Equal(t, 12, out.TotalScore)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{testBase, 2 * testBase}, rec.get())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), testBase)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*testBase)
}

func TestExecute_AllAttemptsFailReturnsThirdError(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"first"}`))
		case 2:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"detail":"second"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL)
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/test/results"})
	require.Error(t, err)

	var he *errors.HTTPError
	require.True(t, stderrors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.Equal(t, "HTTP error! status: 503", he.Message)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestExecute_TimeoutAbortsWithoutBackoff(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL, func(c *Config) { c.AttemptTimeout = 50 * time.Millisecond })
	start := time.Now()
	_, err := e.Execute(context.Background(), Request{Method: http.MethodPost, Path: "/ai/ask", Body: []byte(`{"prompt":"hi"}`)})
	require.Error(t, err)

	assert.True(t, errors.IsTimeout(err), "expected timeout, got %v", err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.get())
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecute_AuthorizationHeader(t *testing.T) {
	t.Parallel()
	var got []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	anon, _ := newTestExecutor(t, srv.URL)
	require.NoError(t, anon.Get(context.Background(), "/test/questions", nil))

	empty, _ := newTestExecutor(t, srv.URL, func(c *Config) { c.Tokens = staticToken("") })
	require.NoError(t, empty.Get(context.Background(), "/test/questions", nil))

	authed, _ := newTestExecutor(t, srv.URL, func(c *Config) { c.Tokens = staticToken("abc") })
	require.NoError(t, authed.Get(context.Background(), "/auth/me", nil))
	require.NoError(t, authed.Delete(context.Background(), "/journal/3", nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "", "Bearer abc", "Bearer abc"}, got)
}

func TestExecute_HeaderMergeOrder(t *testing.T) {
	t.Parallel()
	var h http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "password=pw&username=a%40b.c", string(body))
		_, _ = w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL, func(c *Config) {
		c.Tokens = staticToken("abc")
		c.Header = http.Header{"X-Client": {"wellbeingctl"}}
	})
	req := NewFormRequest("/token", map[string][]string{"username": {"a@b.c"}, "password": {"pw"}})
	req.Header.Set("authorization", "Basic override")
	_, err := e.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", h.Get("Content-Type"))
	assert.Equal(t, "Basic override", h.Get("Authorization"))
	assert.Equal(t, "wellbeingctl", h.Get("X-Client"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestExecute_DefaultContentType(t *testing.T) {
	t.Parallel()
	var ct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL)
	payload, err := e.Execute(context.Background(), Request{Method: http.MethodPut, Path: "/journal", Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, "application/json", ct)
}

func TestExecute_RequestIDStableAcrossAttempts(t *testing.T) {
	t.Parallel()
	var ids []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		n := len(ids)
		mu.Unlock()
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL)
	require.NoError(t, e.Get(context.Background(), "/journal", nil))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestExecute_MalformedSuccessBodyIsParseError(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"questions": [`))
	}))
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL)
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/test/questions"})
	var pe *errors.ParseError
	require.True(t, stderrors.As(err, &pe), "expected ParseError, got %v", err)
	assert.Equal(t, http.StatusOK, pe.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{testBase, 2 * testBase}, rec.get())
}

func TestExecute_TransientOnlyStopsOnParseError(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL, func(c *Config) { c.Policy.Retryable = RetryTransientOnly })
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/journal"})
	var pe *errors.ParseError
	require.True(t, stderrors.As(err, &pe), "expected ParseError, got %v", err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.get())
}

func TestDo_DecodeMismatchIsParseError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_score":"many"}`))
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL)
	var out struct {
		TotalScore int `json:"total_score"`
	}
	err := e.Post(context.Background(), "/test/submit", map[string]any{}, &out)
	var pe *errors.ParseError
	assert.True(t, stderrors.As(err, &pe))
}

func clientErrorServer(calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Score must be 0-5"}`))
	}))
}

func TestExecute_ClientErrorRetriedByDefault(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := clientErrorServer(&calls)
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL)
	err := e.Post(context.Background(), "/journal", map[string]any{"score": 9}, nil)
	require.Error(t, err)
	assert.Equal(t, "Score must be 0-5", err.Error())
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{testBase, 2 * testBase}, rec.get())
}

func TestExecute_TransientOnlyStopsOnClientError(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := clientErrorServer(&calls)
	defer srv.Close()

	e, rec := newTestExecutor(t, srv.URL, func(c *Config) { c.Policy.Retryable = RetryTransientOnly })
	err := e.Post(context.Background(), "/journal", map[string]any{"score": 9}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.get())
}

func TestRetryPredicates(t *testing.T) {
	t.Parallel()
	notFound := errors.ClassifyHTTPError("GET /journal", http.StatusNotFound, nil)
	tooMany := errors.ClassifyHTTPError("GET /journal", http.StatusTooManyRequests, nil)
	timeout := errors.NewTimeoutError("GET /journal", context.DeadlineExceeded)

	assert.True(t, Retryable(notFound))
	assert.True(t, Retryable(tooMany))
	assert.False(t, Retryable(timeout))

	assert.False(t, RetryTransientOnly(notFound))
	assert.True(t, RetryTransientOnly(tooMany))
	assert.False(t, RetryTransientOnly(timeout))
}

func TestExecute_ConnectionRefusedRetried(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e, rec := newTestExecutor(t, url)
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/journal"})
	var ne *errors.NetworkError
	require.True(t, stderrors.As(err, &ne), "expected NetworkError, got %v", err)
	assert.False(t, ne.Timeout)
	assert.False(t, ne.Canceled)
	assert.Len(t, rec.get(), 2)
}

func TestExecute_ParentCancelDuringBackoff(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	e, _ := newTestExecutor(t, srv.URL, func(c *Config) {
		c.Policy.NewBackOff = retry.Constant(time.Hour)
		c.Policy.OnRetry = func(int, error, time.Duration) { cancel() }
	})
	_, err := e.Execute(ctx, Request{Method: http.MethodGet, Path: "/journal"})
	var ne *errors.NetworkError
	require.True(t, stderrors.As(err, &ne), "expected NetworkError, got %v", err)
	assert.True(t, ne.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_BasePathPrefix(t *testing.T) {
	t.Parallel()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e, _ := newTestExecutor(t, srv.URL+"/api/")
	require.NoError(t, e.Get(context.Background(), "test/questions", nil))
	assert.Equal(t, "/api/test/questions", path)
	assert.True(t, strings.HasSuffix(e.BaseURL(), "/api"))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:8000", "ftp://example.com", "http://"} {
		_, err := New(Config{BaseURL: raw})
		assert.Error(t, err, "base %q", raw)
	}
}

func TestExecute_RecordsSpan(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"hello"}`))
	}))
	defer srv.Close()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	e, _ := newTestExecutor(t, srv.URL, func(c *Config) { c.Tracer = tp.Tracer("test") })

	require.NoError(t, e.Post(context.Background(), "/ai/ask", map[string]string{"prompt": "hi"}, nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /ai/ask", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("wellbeing.attempts", 1))
}
