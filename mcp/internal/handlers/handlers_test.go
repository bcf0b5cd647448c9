package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/devserver"
	"github.com/Cowspump/some-diploma-stuff/devserver/config"
)

func newSDK(t *testing.T) *client.Client {
	t.Helper()
	cfg := config.Default()
	cfg.BcryptCost = 4
	ds, err := devserver.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = ds.Close()
	})

	sdk, err := client.New(ts.URL, client.WithMaxAttempts(1))
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	t.Cleanup(func() { _ = sdk.Close() })
	return sdk
}

func register(t *testing.T, sdk *client.Client, email string, role client.Role) {
	t.Helper()
	_, err := sdk.Register(context.Background(), client.RegisterRequest{
		FullName: "MCP " + string(role), Email: email, Password: "password123", Role: role,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	// start tool tests from a signed-out session
	if err := sdk.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	return res.Content[0].(mcp.TextContent).Text
}

func mustOK(t *testing.T) func(res *mcp.CallToolResult, err error) string {
	t.Helper()
	return func(res *mcp.CallToolResult, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if res.IsError {
			t.Fatalf("tool error: %s", text(t, res))
		}
		return text(t, res)
	}
}

func mustToolError(t *testing.T) func(res *mcp.CallToolResult, err error) string {
	t.Helper()
	return func(res *mcp.CallToolResult, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected tool error, got %s", text(t, res))
		}
		return text(t, res)
	}
}

func TestWorkerTools(t *testing.T) {
	ctx := context.Background()
	sdk := newSDK(t)
	register(t, sdk, "worker@x.io", client.RoleWorker)

	sh := NewSessionHandler(sdk)
	jh := NewJournalHandler(sdk)
	th := NewTestHandler(sdk)
	ah := NewAssistantHandler(sdk)

	msg := mustToolError(t)(sh.handleWhoAmI(ctx, call(nil)))
	if !strings.Contains(msg, "not signed in") {
		t.Fatalf("whoami before login: %s", msg)
	}
	msg = mustToolError(t)(sh.handleLogin(ctx, call(map[string]any{"email": "worker@x.io", "password": "nope-nope"})))
	if !strings.Contains(msg, "Incorrect email or password") {
		t.Fatalf("bad login message: %s", msg)
	}
	msg = mustOK(t)(sh.handleLogin(ctx, call(map[string]any{"email": "worker@x.io", "password": "password123"})))
	if !strings.Contains(msg, "(worker)") {
		t.Fatalf("login message: %s", msg)
	}
	if msg := mustOK(t)(sh.handleWhoAmI(ctx, call(nil))); !strings.Contains(msg, "worker@x.io") {
		t.Fatalf("whoami: %s", msg)
	}

	// journal
	mustToolError(t)(jh.handleAdd(ctx, call(map[string]any{"score": 9})))
	mustToolError(t)(jh.handleAdd(ctx, call(map[string]any{"score": 2.5})))
	mustOK(t)(jh.handleAdd(ctx, call(map[string]any{"score": 3, "note": "ok day"})))
	mustOK(t)(jh.handleAdd(ctx, call(map[string]any{"score": float64(4)})))

	var list struct {
		Entries []client.JournalEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	if err := json.Unmarshal([]byte(mustOK(t)(jh.handleList(ctx, call(nil)))), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 2 || list.Entries[1].NoteText() != "ok day" {
		t.Fatalf("unexpected entries: %+v", list)
	}
	mustOK(t)(jh.handleDelete(ctx, call(map[string]any{"entry_id": float64(list.Entries[0].ID)})))
	mustToolError(t)(jh.handleDelete(ctx, call(map[string]any{"entry_id": float64(list.Entries[0].ID)})))

	// test
	var qs struct {
		Questions []client.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(mustOK(t)(th.handleQuestions(ctx, call(nil)))), &qs); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(qs.Questions) == 0 {
		t.Fatal("expected seeded questions")
	}
	answers := map[string]any{}
	for _, q := range qs.Questions {
		answers[strconv.Itoa(q.ID)] = float64(len(q.Options) - 1)
	}
	if msg := mustOK(t)(th.handleSubmit(ctx, call(map[string]any{"answers": answers}))); msg != "Total score: 100 (Excellent)" {
		t.Fatalf("submit: %s", msg)
	}
	mustToolError(t)(th.handleSubmit(ctx, call(map[string]any{"answers": map[string]any{"abc": 1}})))
	mustToolError(t)(th.handleAddQuestion(ctx, call(map[string]any{
		"text": "x", "options": []any{map[string]any{"text": "a", "points": 1}},
	})))

	if msg := mustOK(t)(th.handleResults(ctx, call(nil))); !strings.Contains(msg, `"total_score": 100`) {
		t.Fatalf("results: %s", msg)
	}

	// assistant
	if reply := mustOK(t)(ah.handleAsk(ctx, call(map[string]any{"prompt": "How am I?"}))); reply == "" {
		t.Fatal("empty reply")
	}
	var in struct {
		AverageScore float64 `json:"average_score"`
		Badge        string  `json:"badge"`
	}
	if err := json.Unmarshal([]byte(mustOK(t)(ah.handleInsights(ctx, call(nil)))), &in); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if in.AverageScore != 100 || in.Badge != "excellent" {
		t.Fatalf("insights: %+v", in)
	}

	mustOK(t)(sh.handleLogout(ctx, call(nil)))
	mustToolError(t)(jh.handleList(ctx, call(nil)))
}

func TestTherapistTools(t *testing.T) {
	ctx := context.Background()
	sdk := newSDK(t)
	register(t, sdk, "doc@x.io", client.RoleTherapist)
	if _, err := sdk.Login(ctx, "doc@x.io", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	th := NewTestHandler(sdk)

	mustToolError(t)(th.handleAddQuestion(ctx, call(map[string]any{"text": "no options"})))
	mustOK(t)(th.handleAddQuestion(ctx, call(map[string]any{
		"text":    "Do you take breaks?",
		"options": []any{map[string]any{"text": "No", "points": 0}, map[string]any{"text": "Yes", "points": 20}},
	})))

	var qs struct {
		Questions []client.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(mustOK(t)(th.handleQuestions(ctx, call(nil)))), &qs); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	last := qs.Questions[len(qs.Questions)-1]
	if last.Text != "Do you take breaks?" {
		t.Fatalf("last question = %q", last.Text)
	}
	mustOK(t)(th.handleDeleteQuestion(ctx, call(map[string]any{"question_id": strconv.Itoa(last.ID)})))
	mustToolError(t)(th.handleDeleteQuestion(ctx, call(map[string]any{})))
	mustToolError(t)(th.handleResults(ctx, call(nil)))
}

func TestIntArg(t *testing.T) {
	cases := []struct {
		in      any
		want    int
		present bool
		bad     bool
	}{
		{float64(3), 3, true, false},
		{3, 3, true, false},
		{"7", 7, true, false},
		{1.5, 0, true, true},
		{"x", 0, true, true},
		{true, 0, true, true},
		{nil, 0, false, false},
	}
	for _, tc := range cases {
		got, ok, err := intArg(call(map[string]any{"n": tc.in}), "n")
		if (err != nil) != tc.bad || ok != tc.present || got != tc.want {
			t.Fatalf("intArg(%v) = %d, %v, %v", tc.in, got, ok, err)
		}
	}
}
