package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cowspump/some-diploma-stuff/devserver/config"
)

func TestNew_SeedsQuestions(t *testing.T) {
	cfg := config.Default()
	cfg.BcryptCost = 4
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n, err := s.store.CountQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestNew_WithoutSeed(t *testing.T) {
	cfg := config.Default()
	cfg.SeedQuestions = false
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n, err := s.store.CountQuestions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.JWTSecret = ""
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	s := &Server{cfg: cfg, handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx))
}
