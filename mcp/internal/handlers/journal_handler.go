package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// JournalHandler exposes add_journal_entry, list_journal_entries and
// delete_journal_entry tools.
type JournalHandler struct {
	client *client.Client
}

// NewJournalHandler returns a new handler.
func NewJournalHandler(c *client.Client) *JournalHandler {
	return &JournalHandler{client: c}
}

// RegisterTools registers journal tools.
func (jh *JournalHandler) RegisterTools(s *server.MCPServer) error {
	add := mcp.NewTool("add_journal_entry",
		mcp.WithDescription("Record today's mood on a 0-5 scale with an optional note"),
		mcp.WithNumber("score", mcp.Required(), mcp.Description("Mood score, 0 (very bad) to 5 (very good)")),
		mcp.WithString("note", mcp.Description("Optional free-text note")),
	)
	s.AddTool(add, jh.handleAdd)

	list := mcp.NewTool("list_journal_entries",
		mcp.WithDescription("List the most recent mood journal entries, newest first"),
	)
	s.AddTool(list, jh.handleList)

	del := mcp.NewTool("delete_journal_entry",
		mcp.WithDescription("Delete one of your journal entries"),
		mcp.WithNumber("entry_id", mcp.Required(), mcp.Description("The id of the entry")),
	)
	s.AddTool(del, jh.handleDelete)

	return nil
}

func (jh *JournalHandler) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, err := requireInt(req, "score")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var note *string
	if n := strings.TrimSpace(optionalString(req, "note")); n != "" {
		note = &n
	}

	log.Debug().Int("score", score).Bool("has_note", note != nil).Msg("handling add_journal_entry request")

	start := time.Now()
	_, err = jh.client.AddJournalEntry(ctx, score, note)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Int("score", score).Dur("elapsed", elapsed).Msg("add_journal_entry failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to add journal entry: %s", client.Message(err))), nil
	}

	log.Debug().Dur("elapsed", elapsed).Msg("add_journal_entry completed")
	return mcp.NewToolResultText("Journal entry saved"), nil
}

func (jh *JournalHandler) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	entries, err := jh.client.JournalEntries(ctx)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("list_journal_entries failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list journal entries: %s", client.Message(err))), nil
	}

	log.Debug().Int("entries_returned", len(entries)).Dur("elapsed", elapsed).Msg("list_journal_entries completed")
	return jsonResult(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (jh *JournalHandler) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "entry_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := jh.client.DeleteJournalEntry(ctx, id); err != nil {
		log.Error().Err(err).Int("entry_id", id).Msg("delete_journal_entry failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete entry %d: %s", id, client.Message(err))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Entry %d deleted", id)), nil
}
