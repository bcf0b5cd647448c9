package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/devserver/internal/assistant"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
)

// historyJournalLimit caps how many journal entries feed the assistant.
const historyJournalLimit = 30

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Ask handles POST /ai/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		respond.WriteBadRequest(w, "Prompt must not be empty")
		return
	}

	hist, err := h.history(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("load history")
		respond.WriteInternalError(w, "")
		return
	}
	reply, err := h.assistant.Reply(r.Context(), prompt, hist)
	if err != nil {
		aiReplies.WithLabelValues("error").Inc()
		log.Error().Err(err).Int64("user_id", u.ID).Msg("assistant reply")
		respond.WriteInternalError(w, "AI service error: "+err.Error())
		return
	}
	aiReplies.WithLabelValues("ok").Inc()
	if err := h.store.LogAI(r.Context(), u.ID, prompt, reply); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("ai log not written")
	}
	respond.WriteJSON(w, http.StatusOK, askResponse{Response: reply})
}

// history collects what the assistant may know about userID.
func (h *Handler) history(ctx context.Context, userID int64) (assistant.History, error) {
	var hist assistant.History

	entries, err := h.store.RecentJournals(ctx, userID, historyJournalLimit)
	if err != nil {
		return hist, err
	}
	for _, e := range entries {
		hist.Moods = append(hist.Moods, e.Score)
	}
	if len(entries) > 0 {
		hist.LastNote = entries[0].NoteText()
	}

	results, err := h.store.TestResults(ctx, userID)
	if err != nil {
		return hist, err
	}
	// stored newest first, scoring wants oldest first
	for i := len(results) - 1; i >= 0; i-- {
		hist.Totals = append(hist.Totals, results[i].TotalScore)
	}

	hist.Summary, err = h.store.LatestSummary(ctx, userID)
	return hist, err
}

// refreshSummary regenerates the stored summary of userID in the background.
func (h *Handler) refreshSummary(userID int64) {
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		ctx, cancel := context.WithTimeout(h.bgCtx, h.summaryTimeout)
		defer cancel()

		hist, err := h.history(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("summary history")
			return
		}
		sum, err := h.assistant.Summarize(ctx, hist)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("summary generation failed")
			return
		}
		if err := h.store.SaveSummary(ctx, userID, sum); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("summary not saved")
		}
	}()
}
