package api

import (
	"context"
	"fmt"

	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// Questions lists the well-being test questions.
func Questions(ctx context.Context, r Requester) ([]types.Question, error) {
	var resp types.QuestionsResponse
	if err := r.Get(ctx, "/test/questions", &resp); err != nil {
		return nil, logFailure("questions", err)
	}
	return resp.Normalize(), nil
}

// SubmitTest sends the selected option index per question id and returns the
// total the backend computed.
func SubmitTest(ctx context.Context, r Requester, answers map[int]int) (*types.SubmitTestResponse, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("at least one answer is required")
	}
	var resp types.SubmitTestResponse
	if err := r.Post(ctx, "/test/submit", types.SubmitTestRequest{Answers: answers}, &resp); err != nil {
		return nil, logFailure("submit test", err)
	}
	return &resp, nil
}

// TestResults lists the caller's stored test totals.
func TestResults(ctx context.Context, r Requester) ([]types.TestResult, error) {
	var resp types.TestResultsResponse
	if err := r.Get(ctx, "/test/results", &resp); err != nil {
		return nil, logFailure("test results", err)
	}
	return resp.Normalize(), nil
}

// AddQuestion creates a test question. Therapists only.
func AddQuestion(ctx context.Context, r Requester, q types.QuestionInput) (*types.MessageResponse, error) {
	if err := types.ValidateQuestion(q); err != nil {
		return nil, err
	}
	var resp types.MessageResponse
	if err := r.Post(ctx, "/test/add-question", q, &resp); err != nil {
		return nil, logFailure("add question", err)
	}
	return &resp, nil
}

// DeleteQuestion removes a test question. Therapists only.
func DeleteQuestion(ctx context.Context, r Requester, id int) (*types.MessageResponse, error) {
	if err := types.ValidateID(id, "question id"); err != nil {
		return nil, err
	}
	var resp types.MessageResponse
	if err := r.Delete(ctx, fmt.Sprintf("/test/question/%d", id), &resp); err != nil {
		return nil, logFailure("delete question", err)
	}
	return &resp, nil
}
