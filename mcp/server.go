package mcp

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/internal/logger"
	"github.com/Cowspump/some-diploma-stuff/mcp/internal/handlers"
)

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server exposing the well-being tools backed by c.
func NewServer(c *client.Client, name, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)

	for _, h := range []toolRegisterer{
		handlers.NewSessionHandler(c),
		handlers.NewJournalHandler(c),
		handlers.NewTestHandler(c),
		handlers.NewAssistantHandler(c),
	} {
		if err := h.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RunMCPServer serves the well-being tools on stdio or Streamable HTTP until
// the host disconnects or the process receives SIGINT or SIGTERM.
func RunMCPServer() error {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	// stdout belongs to the stdio transport
	log.Logger = logger.NewWithWriter(cfg.ServerName, os.Stderr).With().Caller().Logger()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := client.NewSession(client.NewFileTokenStore(cfg.SessionFile))
	if err := session.Init(ctx); err != nil {
		log.Warn().Err(err).Str("session_file", cfg.SessionFile).Msg("ignoring unreadable session")
	}
	sdk, err := client.NewFromEnv(client.WithSession(session))
	if err != nil {
		log.Error().Stack().Err(err).Msg("build client")
		return err
	}
	defer sdk.Close()
	log.Info().Str("base_url", sdk.BaseURL()).Bool("signed_in", session.Authenticated()).Msg("client ready")

	s, err := NewServer(sdk, cfg.ServerName, cfg.ServerVersion)
	if err != nil {
		return err
	}

	if cfg.UseStdio(os.Stdin) {
		log.Info().Msg("serving MCP on stdio")
		return server.ServeStdio(s)
	}
	return ServeHTTP(ctx, cfg, s)
}

// ServeHTTP serves s on cfg.HTTPAddr under /mcp until ctx ends, then drains
// open sessions within cfg.ShutdownTimeout.
func ServeHTTP(ctx context.Context, cfg *Config, s *server.MCPServer) error {
	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	// WriteTimeout stays zero: responses may stream.
	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     streamSrv,
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("serving MCP on Streamable HTTP")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := errors.Join(srv.Shutdown(shutdownCtx), streamSrv.Shutdown(shutdownCtx))
		if err != nil {
			log.Error().Err(err).Msg("MCP server forced to shut down")
			return err
		}
		log.Info().Msg("MCP server stopped")
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		log.Error().Stack().Err(err).Msg("MCP HTTP server failed")
		return err
	}
}
