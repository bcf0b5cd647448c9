package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

// TestHandler exposes the well-being test tools.
type TestHandler struct {
	client *client.Client
}

// NewTestHandler returns a new handler.
func NewTestHandler(c *client.Client) *TestHandler {
	return &TestHandler{client: c}
}

// RegisterTools registers test tools.
func (th *TestHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("list_test_questions",
		mcp.WithDescription("List the well-being test questions with their answer options (option index starts at 0)"),
	), th.handleQuestions)

	s.AddTool(mcp.NewTool("submit_test",
		mcp.WithDescription("Submit test answers. Workers only."),
		mcp.WithObject("answers", mcp.Required(),
			mcp.Description(`Map of question id to chosen option index, e.g. {"1": 0, "2": 3}`)),
	), th.handleSubmit)

	s.AddTool(mcp.NewTool("list_test_results",
		mcp.WithDescription("List your past test totals, newest first. Workers only."),
	), th.handleResults)

	s.AddTool(mcp.NewTool("add_test_question",
		mcp.WithDescription("Add a test question. Therapists only."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Question text")),
		mcp.WithArray("options", mcp.Required(),
			mcp.Description(`Answer options, e.g. [{"text": "Never", "points": 0}]`)),
	), th.handleAddQuestion)

	s.AddTool(mcp.NewTool("delete_test_question",
		mcp.WithDescription("Delete a test question. Therapists only."),
		mcp.WithNumber("question_id", mcp.Required(), mcp.Description("The id of the question")),
	), th.handleDeleteQuestion)

	return nil
}

func (th *TestHandler) handleQuestions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qs, err := th.client.Questions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list_test_questions failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list questions: %s", client.Message(err))), nil
	}
	return jsonResult(map[string]any{"questions": qs, "count": len(qs)})
}

func (th *TestHandler) handleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["answers"]
	if !ok {
		return mcp.NewToolResultError("answers parameter is required"), nil
	}
	var byKey map[string]int
	if err := decodeArg(raw, &byKey); err != nil {
		return mcp.NewToolResultError("answers must map question ids to option indexes"), nil
	}
	answers := make(map[int]int, len(byKey))
	for k, v := range byKey {
		id, err := strconv.Atoi(k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("question id %q is not a number", k)), nil
		}
		answers[id] = v
	}

	start := time.Now()
	res, err := th.client.SubmitTest(ctx, answers)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Int("answers", len(answers)).Dur("elapsed", elapsed).Msg("submit_test failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to submit test: %s", client.Message(err))), nil
	}

	badge := scoring.BadgeFor(res.TotalScore)
	log.Debug().Int("total", res.TotalScore).Dur("elapsed", elapsed).Msg("submit_test completed")
	return mcp.NewToolResultText(fmt.Sprintf("Total score: %d (%s)", res.TotalScore, badge.Label())), nil
}

func (th *TestHandler) handleResults(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := th.client.TestResults(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list_test_results failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list results: %s", client.Message(err))), nil
	}
	return jsonResult(map[string]any{"results": results, "count": len(results)})
}

func (th *TestHandler) handleAddQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	var opts []client.AnswerOption
	if err := decodeArg(req.GetArguments()["options"], &opts); err != nil || len(opts) == 0 {
		return mcp.NewToolResultError("options must be a non-empty list of {text, points}"), nil
	}
	if _, err := th.client.AddQuestion(ctx, client.QuestionInput{Text: text, Options: opts}); err != nil {
		log.Error().Err(err).Msg("add_test_question failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to add question: %s", client.Message(err))), nil
	}
	return mcp.NewToolResultText("Question added"), nil
}

func (th *TestHandler) handleDeleteQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(req, "question_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := th.client.DeleteQuestion(ctx, id); err != nil {
		log.Error().Err(err).Int("question_id", id).Msg("delete_test_question failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete question %d: %s", id, client.Message(err))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Question %d deleted", id)), nil
}
