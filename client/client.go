package client

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/client/internal/api"
	"github.com/Cowspump/some-diploma-stuff/client/internal/rest"
	"github.com/Cowspump/some-diploma-stuff/client/internal/retry"
	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

// DefaultBaseURL is used when New receives an empty base URL.
const DefaultBaseURL = "http://localhost:8000"

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to the well-being backend. It is safe for concurrent use;
// the session is the only shared mutable state.
type Client struct {
	baseURL        string
	http           *http.Client
	session        *Session
	transport      LoginTransport
	policy         retry.Policy
	attemptTimeout time.Duration
	header         http.Header
	limiter        *rate.Limiter
	tracer         trace.Tracer
	debug          bool
	seedToken      string

	exec *rest.Executor

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for baseURL. Options are applied in order; the
// first failing option aborts construction.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:        baseURL,
		http:           &http.Client{},
		transport:      LoginForm,
		policy:         retry.DefaultPolicy(),
		attemptTimeout: rest.DefaultAttemptTimeout,
		header:         make(http.Header),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.session == nil {
		c.session = NewSession(nil)
	}
	if c.seedToken != "" && !c.session.Authenticated() {
		c.session.setToken(c.seedToken)
	}
	if c.debug {
		c.http.Transport = &debugTransport{base: c.http.Transport}
	}

	exec, err := rest.New(rest.Config{
		BaseURL:        c.baseURL,
		HTTPClient:     c.http,
		Tokens:         c.session,
		Policy:         c.policy,
		AttemptTimeout: c.attemptTimeout,
		Header:         c.header,
		Limiter:        c.limiter,
		Tracer:         c.tracer,
	})
	if err != nil {
		return nil, err
	}
	c.exec = exec
	c.baseURL = exec.BaseURL()
	return c, nil
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the session whose token is attached to every request.
func (c *Client) Session() *Session { return c.session }

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

// --------------------------------------------------------------------
// Raw verbs
// --------------------------------------------------------------------

// Get issues a GET against path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.exec.Get(ctx, path, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.exec.Post(ctx, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.exec.Put(ctx, path, body, out)
}

// Delete issues a DELETE against path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.exec.Delete(ctx, path, out)
}

// --------------------------------------------------------------------
// Auth operations - delegated to internal/api
// --------------------------------------------------------------------

// Login exchanges credentials for a token and begins the session.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*AuthResult, error) {
	res, err := api.Login(ctx, c.exec, c.transport, identifier, secret)
	recordAuth("login", err)
	if err != nil {
		return nil, err
	}
	if err := c.session.Begin(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Register creates an account and begins a session for it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	res, err := api.Register(ctx, c.exec, c.transport, req)
	recordAuth("register", err)
	if err != nil {
		return nil, err
	}
	if err := c.session.Begin(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Logout ends the session locally. The backend keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	recordAuth("logout", nil)
	return c.session.Clear(ctx)
}

// CurrentUser fetches the identity behind the session token and caches it on
// the session.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	u, err := api.CurrentUser(ctx, c.exec)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Refresh renews the session token.
func (c *Client) Refresh(ctx context.Context) (*AuthResult, error) {
	if !c.session.Authenticated() {
		return nil, ErrNoSession
	}
	res, err := api.Refresh(ctx, c.exec)
	recordAuth("refresh", err)
	if err != nil {
		return nil, err
	}
	if res.User == nil {
		res.User = c.session.User()
	}
	if err := c.session.Begin(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// --------------------------------------------------------------------
// Test operations
// --------------------------------------------------------------------

// Questions lists the test questions.
func (c *Client) Questions(ctx context.Context) ([]Question, error) {
	return api.Questions(ctx, c.exec)
}

// SubmitTest submits answers (question id to option index).
func (c *Client) SubmitTest(ctx context.Context, answers map[int]int) (*SubmitTestResult, error) {
	return api.SubmitTest(ctx, c.exec, answers)
}

// TestResults lists the caller's past test totals.
func (c *Client) TestResults(ctx context.Context) ([]TestResult, error) {
	return api.TestResults(ctx, c.exec)
}

// AddQuestion creates a question. Requires a therapist session.
func (c *Client) AddQuestion(ctx context.Context, q QuestionInput) (*MessageResponse, error) {
	return api.AddQuestion(ctx, c.exec, q)
}

// DeleteQuestion removes a question. Requires a therapist session.
func (c *Client) DeleteQuestion(ctx context.Context, id int) (*MessageResponse, error) {
	return api.DeleteQuestion(ctx, c.exec, id)
}

// --------------------------------------------------------------------
// Journal operations
// --------------------------------------------------------------------

// JournalEntries lists the most recent journal entries, newest first.
func (c *Client) JournalEntries(ctx context.Context) ([]JournalEntry, error) {
	return api.JournalEntries(ctx, c.exec)
}

// AddJournalEntry records a 0-5 mood score with an optional note.
func (c *Client) AddJournalEntry(ctx context.Context, score int, note *string) (*MessageResponse, error) {
	return api.AddJournalEntry(ctx, c.exec, score, note)
}

// DeleteJournalEntry removes one entry.
func (c *Client) DeleteJournalEntry(ctx context.Context, id int) (*MessageResponse, error) {
	return api.DeleteJournalEntry(ctx, c.exec, id)
}

// --------------------------------------------------------------------
// Assistant operations
// --------------------------------------------------------------------

// Ask sends a prompt to the assistant.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	return api.Ask(ctx, c.exec, prompt)
}

// Insights fetches the journal and test history and summarizes it.
func (c *Client) Insights(ctx context.Context) (*scoring.Insights, error) {
	entries, err := c.JournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	results, err := c.TestResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test results: %w", err)
	}

	moods := make([]int, 0, len(entries))
	for _, e := range entries {
		moods = append(moods, e.Score)
	}
	var lastNote string
	if len(entries) > 0 {
		lastNote = entries[0].NoteText()
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	totals := make([]int, 0, len(results))
	for _, r := range results {
		totals = append(totals, r.TotalScore)
	}

	in := scoring.Summarize(totals, moods, lastNote)
	return &in, nil
}
