package api

import (
	"context"

	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// Ask sends a prompt to the assistant and returns its reply.
func Ask(ctx context.Context, r Requester, prompt string) (string, error) {
	if err := types.ValidatePrompt(prompt); err != nil {
		return "", err
	}
	var resp types.AskResponse
	if err := r.Post(ctx, "/ai/ask", types.AskRequest{Prompt: prompt}, &resp); err != nil {
		return "", logFailure("ask", err)
	}
	return resp.Response, nil
}
