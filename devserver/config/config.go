package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the devserver settings. Environment variables are parsed from
// the WELLBEING_DEVSERVER_ prefix.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8000"`
	DBPath   string `envconfig:"DB_PATH" default:":memory:"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"30m"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Assistant
	AIRate       float64       `envconfig:"AI_RATE" default:"1"`
	AIBurst      int           `envconfig:"AI_BURST" default:"5"`
	OpenAIURL    string        `envconfig:"OPENAI_URL" default:""`
	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel  string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`

	SeedQuestions bool `envconfig:"SEED_QUESTIONS" default:"true"`
}

// New loads the configuration from the environment and validates it.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WELLBEING_DEVSERVER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration New would produce from an empty
// environment.
func Default() *Config {
	return &Config{
		Port:           8000,
		DBPath:         ":memory:",
		LogLevel:       "info",
		JWTSecret:      "dev-secret-change-me",
		TokenTTL:       30 * time.Minute,
		BcryptCost:     10,
		AllowedOrigins: []string{"http://localhost:5173"},
		AIRate:         1,
		AIBurst:        5,
		OpenAIModel:    "gpt-4o-mini",
		AITimeout:      30 * time.Second,
		SeedQuestions:  true,
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be > 0")
	}
	if c.AIRate <= 0 || c.AIBurst <= 0 {
		return fmt.Errorf("AI_RATE and AI_BURST must be > 0")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UseOpenAI reports whether an OpenAI-compatible endpoint is configured.
func (c *Config) UseOpenAI() bool {
	return c.OpenAIURL != ""
}
