package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBackoff(5*time.Millisecond, 50*time.Millisecond)}, opts...)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_LoginBeginsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","user":{"id":1,"email":"w@x.io","fullName":"W","role":"worker"}}`))
	})
	mux.HandleFunc("/journal", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"journals":[]}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.JournalEntries(ctx)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Not authenticated", Message(err))

	res, err := c.Login(ctx, "w@x.io", "password")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.AccessToken)
	assert.Equal(t, "abc", c.Session().Token())
	assert.Equal(t, RoleWorker, c.Session().User().Role)

	entries, err := c.JournalEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Session().Authenticated())
}

func TestClient_LoginFailureLeavesSessionEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	_, err := c.Login(context.Background(), "w@x.io", "bad")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Incorrect username or password", ae.Message)
	assert.False(t, c.Session().Authenticated())
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"response":"breathe"}`))
	}), WithToken("t"))

	got, err := c.Ask(context.Background(), "I feel tense")
	require.NoError(t, err)
	assert.Equal(t, "breathe", got)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_MaxAttemptsOne(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}), WithMaxAttempts(1))

	_, err := c.Questions(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_AttemptTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}), WithAttemptTimeout(30*time.Millisecond))

	_, err := c.TestResults(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClient_CurrentUserAndRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"email":"t@x.io","fullName":"Tess","role":"therapist"}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"access_token":"new","token_type":"bearer"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Refresh(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, c.Session().Begin(ctx, &AuthResult{AccessToken: "old", TokenType: "bearer"}))
	u, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleTherapist, u.Role)

	res, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", c.Session().Token())
	require.NotNil(t, res.User)
	assert.Equal(t, 3, res.User.ID, "refresh keeps the cached user")
}

func TestClient_Insights(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/journal", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"journals":[
			{"id":3,"wellbeing_score":5,"note_text":"great run","created_at":"2024-05-03T08:00:00Z"},
			{"id":2,"wellbeing_score":4,"note_text":null,"created_at":"2024-05-02T08:00:00Z"},
			{"id":1,"wellbeing_score":3,"note_text":"meh","created_at":"2024-05-01T08:00:00Z"}]}`))
	})
	mux.HandleFunc("/test/results", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":2,"total_score":70,"created_at":"2024-05-02T08:00:00Z"},
			{"id":1,"total_score":40,"created_at":"2024-04-01T08:00:00Z"}]}`))
	})
	c := newTestClient(t, mux, WithToken("t"))

	in, err := c.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.0, in.AverageMood)
	assert.Equal(t, 55.0, in.AverageScore)
	assert.Equal(t, "improving", string(in.Trend))
	assert.Equal(t, 3, in.Entries)

	raw, err := json.Marshal(in.Recommendations)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "great run")
}

func TestClient_RawVerbs(t *testing.T) {
	var seen []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	ctx := context.Background()
	var out MessageResponse
	require.NoError(t, c.Get(ctx, "/health", &out))
	assert.Equal(t, "ok", out.Status)
	require.NoError(t, c.Post(ctx, "/a", map[string]int{"x": 1}, nil))
	require.NoError(t, c.Put(ctx, "/b", map[string]int{"x": 1}, nil))
	require.NoError(t, c.Delete(ctx, "/c", nil))
	assert.Equal(t, []string{"GET /health", "POST /a", "PUT /b", "DELETE /c"}, seen)
}

func TestClient_CloseIdempotent(t *testing.T) {
	c, err := New("http://example.com")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
