package client

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the SDK settings read from the environment.
// Environment variables are parsed from the WELLBEING_ prefix,
// e.g. WELLBEING_BASE_URL, WELLBEING_MAX_ATTEMPTS.
type Config struct {
	BaseURL        string        `envconfig:"BASE_URL" default:"http://localhost:8000"`
	AttemptTimeout time.Duration `envconfig:"ATTEMPT_TIMEOUT" default:"10s"`
	MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	BackoffBase    time.Duration `envconfig:"BACKOFF_BASE" default:"1s"`
	BackoffMax     time.Duration `envconfig:"BACKOFF_MAX" default:"30s"`
	LoginTransport string        `envconfig:"LOGIN_TRANSPORT" default:"form"`
	Debug          bool          `envconfig:"DEBUG" default:"false"`

	// Token seeds the session, for scripts that already hold a token.
	Token string `envconfig:"TOKEN"`
}

// LoadConfig reads WELLBEING_* variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WELLBEING", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// Options translates the config into client options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithAttemptTimeout(c.AttemptTimeout),
		WithMaxAttempts(c.MaxAttempts),
		WithBackoff(c.BackoffBase, c.BackoffMax),
		WithLoginTransport(LoginTransport(c.LoginTransport)),
		WithDebugLogging(c.Debug),
	}
	if c.Token != "" {
		opts = append(opts, WithToken(c.Token))
	}
	return opts
}

// NewFromEnv builds a client from WELLBEING_* variables. Explicit opts are
// applied after the environment and win.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg.BaseURL, append(cfg.Options(), opts...)...)
}
