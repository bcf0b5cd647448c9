package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/devserver/internal/assistant"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/auth"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators of Handler.
type Deps struct {
	Store     *store.Store
	Auth      *auth.Service
	Assistant assistant.Assistant
	// AILimiter paces /ai/ask. Nil disables limiting.
	AILimiter *rate.Limiter
	// SummaryTimeout bounds one background summary refresh.
	SummaryTimeout time.Duration
}

// Handler serves the well-being REST API.
type Handler struct {
	store          *store.Store
	auth           *auth.Service
	assistant      assistant.Assistant
	aiLimiter      *rate.Limiter
	summaryTimeout time.Duration

	bgCtx  context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
}

// NewHandler wires the API handlers.
func NewHandler(d Deps) (*Handler, error) {
	if d.Store == nil || d.Auth == nil {
		return nil, errors.New("store and auth are required")
	}
	if d.Assistant == nil {
		d.Assistant = assistant.Rules{}
	}
	if d.SummaryTimeout <= 0 {
		d.SummaryTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		store:          d.Store,
		auth:           d.Auth,
		assistant:      d.Assistant,
		aiLimiter:      d.AILimiter,
		summaryTimeout: d.SummaryTimeout,
		bgCtx:          ctx,
		cancel:         cancel,
	}, nil
}

// Close stops background summary work and waits for it to finish.
func (h *Handler) Close() {
	h.cancel()
	h.bg.Wait()
}

// Wait blocks until queued background work is done.
func (h *Handler) Wait() {
	h.bg.Wait()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respond.WriteBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
