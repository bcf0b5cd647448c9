package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// SessionHandler exposes login, logout and whoami tools.
type SessionHandler struct {
	client *client.Client
}

// NewSessionHandler creates a new session handler instance.
func NewSessionHandler(c *client.Client) *SessionHandler {
	return &SessionHandler{client: c}
}

// RegisterTools registers the session tools with the MCP server.
func (sh *SessionHandler) RegisterTools(s *server.MCPServer) error {
	login := mcp.NewTool("login",
		mcp.WithDescription("Sign in to the well-being service. The session is kept for later tool calls."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Account e-mail")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
	)
	s.AddTool(login, sh.handleLogin)

	logout := mcp.NewTool("logout",
		mcp.WithDescription("Forget the current session"),
	)
	s.AddTool(logout, sh.handleLogout)

	whoami := mcp.NewTool("whoami",
		mcp.WithDescription("Show the signed-in user"),
	)
	s.AddTool(whoami, sh.handleWhoAmI)

	// registration intentionally omitted; accounts are created from the CLI or the web app.
	return nil
}

func (sh *SessionHandler) handleLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError("email parameter is required"), nil
	}
	password, err := req.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError("password parameter is required"), nil
	}

	start := time.Now()
	res, err := sh.client.Login(ctx, email, password)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("email", email).Dur("elapsed", elapsed).Msg("login failed")
		return mcp.NewToolResultError(fmt.Sprintf("login failed: %s", client.Message(err))), nil
	}

	log.Debug().Str("email", email).Dur("elapsed", elapsed).Msg("login completed")
	if res.User == nil {
		return mcp.NewToolResultText("Signed in"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Signed in as %s (%s)", res.User.FullName, res.User.Role)), nil
}

func (sh *SessionHandler) handleLogout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := sh.client.Logout(ctx); err != nil {
		log.Error().Err(err).Msg("logout failed")
		return mcp.NewToolResultError(fmt.Sprintf("logout failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Signed out"), nil
}

func (sh *SessionHandler) handleWhoAmI(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !sh.client.Session().Authenticated() {
		return mcp.NewToolResultError("not signed in; call login first"), nil
	}
	u, err := sh.client.CurrentUser(ctx)
	if err != nil {
		log.Error().Err(err).Msg("whoami failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get current user: %s", client.Message(err))), nil
	}
	result := fmt.Sprintf("User Details:\n- ID: %d\n- Email: %s\n- Name: %s\n- Role: %s",
		u.ID, u.Email, u.FullName, u.Role)
	return mcp.NewToolResultText(result), nil
}
