// Package devserver is the local reference backend of the well-being
// service. It serves the REST contract the client SDK speaks, on SQLite.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/devserver/config"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/api"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/assistant"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/auth"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/seed"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
	"github.com/Cowspump/some-diploma-stuff/internal/logger"
)

// Server owns the store and the HTTP handler of one devserver instance.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	api     *api.Handler
	handler http.Handler
}

// New opens the store, seeds it when configured and builds the router.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if cfg.SeedQuestions {
		if _, err := seed.Apply(ctx, st); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	var asst assistant.Assistant = assistant.Rules{}
	if cfg.UseOpenAI() {
		asst = assistant.NewOpenAI(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	}

	h, err := api.NewHandler(api.Deps{
		Store:          st,
		Auth:           auth.NewService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost),
		Assistant:      asst,
		AILimiter:      rate.NewLimiter(rate.Limit(cfg.AIRate), cfg.AIBurst),
		SummaryTimeout: cfg.AITimeout,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	router, err := api.NewRouter(h, cfg.AllowedOrigins)
	if err != nil {
		h.Close()
		_ = st.Close()
		return nil, err
	}
	return &Server{cfg: cfg, store: st, api: h, handler: router}, nil
}

// Handler is the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close waits for background work and closes the store.
func (s *Server) Close() error {
	s.api.Close()
	return s.store.Close()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// Run loads the configuration from the environment and serves until SIGINT
// or SIGTERM.
func Run() error {
	log.Logger = logger.New("wellbeing-devserver")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	log.Info().
		Int("port", cfg.Port).
		Str("db_path", cfg.DBPath).
		Bool("openai", cfg.UseOpenAI()).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Devserver starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := New(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Devserver init failed")
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()
	return s.ListenAndServe(ctx)
}
