package api

import (
	"context"
	"fmt"

	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// JournalEntries returns the caller's most recent mood entries, newest first.
func JournalEntries(ctx context.Context, r Requester) ([]types.JournalEntry, error) {
	var resp types.JournalsResponse
	if err := r.Get(ctx, "/journal", &resp); err != nil {
		return nil, logFailure("journal entries", err)
	}
	return resp.Normalize(), nil
}

// AddJournalEntry records a mood score (0-5) with an optional note.
func AddJournalEntry(ctx context.Context, r Requester, score int, note *string) (*types.MessageResponse, error) {
	if err := types.ValidateMoodScore(score); err != nil {
		return nil, err
	}
	var resp types.MessageResponse
	if err := r.Post(ctx, "/journal", types.CreateJournalEntryRequest{Score: score, Note: note}, &resp); err != nil {
		return nil, logFailure("add journal entry", err)
	}
	return &resp, nil
}

// DeleteJournalEntry removes one of the caller's entries.
func DeleteJournalEntry(ctx context.Context, r Requester, id int) (*types.MessageResponse, error) {
	if err := types.ValidateID(id, "entry id"); err != nil {
		return nil, err
	}
	var resp types.MessageResponse
	if err := r.Delete(ctx, fmt.Sprintf("/journal/%d", id), &resp); err != nil {
		return nil, logFailure("delete journal entry", err)
	}
	return &resp, nil
}
