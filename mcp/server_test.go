package mcp

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cowspump/some-diploma-stuff/client"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MCP_SESSION_FILE", "/tmp/wb-session.json")
	t.Setenv("MCP_LOG_LEVEL", "warn")
	t.Setenv("MCP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig([]string{"-http-addr", ":9999"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wb-session.json", cfg.SessionFile)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, TransportAuto, cfg.Transport)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 120*time.Second, cfg.IdleTimeout)

	cfg, err = LoadConfig([]string{"-log-level", "debug", "-transport", "http"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "flags override env")
	assert.Equal(t, TransportHTTP, cfg.Transport)

	_, err = LoadConfig([]string{"-unknown"})
	assert.Error(t, err)
	_, err = LoadConfig([]string{"-transport", "pigeon"})
	assert.Error(t, err)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("MCP_SESSION_FILE", "/tmp/wb-session.json")
	t.Setenv("MCP_HTTP_IDLE_TIMEOUT", "bogus")
	_, err := LoadConfig(nil)
	assert.Error(t, err)
}

func TestLoadConfig_DefaultSessionPath(t *testing.T) {
	want := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("WELLBEING_SESSION_FILE", want)
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, want, cfg.SessionFile)
}

func TestConfig_UseStdio(t *testing.T) {
	// a regular file is not a terminal
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	cfg := &Config{Transport: TransportAuto}
	assert.True(t, cfg.UseStdio(f))
	cfg.Transport = TransportHTTP
	assert.False(t, cfg.UseStdio(f))
	cfg.Transport = TransportStdio
	assert.True(t, cfg.UseStdio(nil))
}

func TestNewServer(t *testing.T) {
	sdk, err := client.New("http://example.com")
	require.NoError(t, err)
	s, err := NewServer(sdk, "test", "0.0.1")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestServeHTTP_StopsOnContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := &Config{
		HTTPAddr:        addr,
		ShutdownTimeout: time.Second,
		ReadTimeout:     time.Second,
		IdleTimeout:     time.Second,
	}
	s := server.NewMCPServer("test", "0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeHTTP(ctx, cfg, s) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("ServeHTTP did not return after cancel")
	}
}
