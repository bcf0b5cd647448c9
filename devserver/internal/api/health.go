package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Health handles GET /health and checks the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		respond.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}
