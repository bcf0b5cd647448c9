package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Cowspump/some-diploma-stuff/client/internal/rest"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

// newExec starts srv around h and returns an executor that makes a single
// attempt per call.
func newExec(t *testing.T, h http.HandlerFunc, token string) *rest.Executor {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	e, err := rest.New(rest.Config{
		BaseURL:        srv.URL,
		AttemptTimeout: 2 * time.Second,
		Tokens:         tokenFunc(func() string { return token }),
		Policy:         retry.Policy{MaxAttempts: 1, NewBackOff: retry.Constant(time.Millisecond)},
	})
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	return e
}

// unreachable fails the test if the backend is contacted.
func unreachable(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}
}
