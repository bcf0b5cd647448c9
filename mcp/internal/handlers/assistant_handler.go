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

// AssistantHandler exposes ask_assistant and get_insights.
type AssistantHandler struct {
	client *client.Client
}

func NewAssistantHandler(c *client.Client) *AssistantHandler {
	return &AssistantHandler{client: c}
}

// RegisterTools registers the assistant tools on the MCP server.
func (ah *AssistantHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("ask_assistant",
		mcp.WithDescription("Ask the well-being assistant a question. Replies take your journal and test history into account."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question or message")),
	), ah.handleAsk)

	s.AddTool(mcp.NewTool("get_insights",
		mcp.WithDescription("Summarize mood and test history: averages, badge, trend and recommendations"),
	), ah.handleInsights)
	return nil
}

func (ah *AssistantHandler) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt parameter is required"), nil
	}

	start := time.Now()
	reply, err := ah.client.Ask(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Int("prompt_len", len(prompt)).Dur("elapsed", elapsed).Msg("ask_assistant failed")
		return mcp.NewToolResultError(fmt.Sprintf("assistant unavailable: %s", client.Message(err))), nil
	}
	log.Debug().Int("reply_len", len(reply)).Dur("elapsed", elapsed).Msg("ask_assistant completed")
	return mcp.NewToolResultText(reply), nil
}

func (ah *AssistantHandler) handleInsights(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := ah.client.Insights(ctx)
	if err != nil {
		log.Error().Err(err).Msg("get_insights failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to build insights: %s", client.Message(err))), nil
	}
	return jsonResult(in)
}
