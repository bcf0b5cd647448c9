package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
)

// recentJournalLimit is how many entries GET /journal returns.
const recentJournalLimit = 5

type journalsResponse struct {
	Message  string                `json:"message"`
	Journals []client.JournalEntry `json:"journals"`
}

// ListJournals handles GET /journal.
func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	entries, err := h.store.RecentJournals(r.Context(), u.ID, recentJournalLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("list journals")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, journalsResponse{Message: "Journals fetched", Journals: entries})
}

// AddJournal handles POST /journal.
func (h *Handler) AddJournal(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	var req client.CreateJournalEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Score < 0 || req.Score > 5 {
		respond.WriteBadRequest(w, "Score must be 0-5")
		return
	}
	if _, err := h.store.AddJournal(r.Context(), u.ID, req.Score, req.Note); err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("add journal")
		respond.WriteInternalError(w, "")
		return
	}
	h.refreshSummary(u.ID)
	respond.WriteJSON(w, http.StatusOK, client.MessageResponse{Status: "success", Message: "Journal entry saved"})
}

// DeleteJournal handles DELETE /journal/{id}. Only the owner may delete.
func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	j, err := h.store.JournalByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteNotFound(w, "Journal entry not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("journal_id", id).Msg("get journal")
		respond.WriteInternalError(w, "")
		return
	}
	if j.UserID != u.ID {
		respond.WriteForbidden(w, "Not authorized to delete this journal entry")
		return
	}
	if err := h.store.DeleteJournal(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Int64("journal_id", id).Msg("delete journal")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, client.MessageResponse{Message: "Journal entry deleted"})
}
