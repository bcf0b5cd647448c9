package mcp

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// Transport modes accepted by MCP_TRANSPORT.
const (
	TransportAuto  = "auto"
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the MCP server settings. Environment variables use the MCP_
// prefix (MCP_HTTP_ADDR, MCP_LOG_LEVEL, ...); the backend address and retry
// settings come from the WELLBEING_* client variables.
type Config struct {
	Transport       string        `envconfig:"TRANSPORT" default:"auto"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8090"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ServerName      string        `envconfig:"SERVER_NAME" default:"wellbeing-mcp-server"`
	ServerVersion   string        `envconfig:"SERVER_VERSION" default:"0.1.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"120s"`

	// SessionFile defaults to client.DefaultSessionPath so the server signs
	// in as whoever last used wellbeingctl.
	SessionFile string `envconfig:"SESSION_FILE"`
}

// LoadConfig reads MCP_* variables, then applies command line flags on top.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MCP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.SessionFile == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = path
	}

	fs := flag.NewFlagSet("wellbeing-mcp-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport: auto, stdio or http")
	fs.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file shared with wellbeingctl")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Listen address of the Streamable HTTP transport")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the transport mode and timeouts.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportAuto, TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q: want auto, stdio or http", c.Transport)
	}
	if c.ShutdownTimeout <= 0 || c.ReadTimeout <= 0 || c.IdleTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	return nil
}

// UseStdio resolves the transport. In auto mode stdio is chosen when stdin
// is not a terminal, which is how MCP hosts launch the server.
func (c *Config) UseStdio(stdin *os.File) bool {
	switch c.Transport {
	case TransportStdio:
		return true
	case TransportHTTP:
		return false
	}
	fi, err := stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}
