package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.AttemptTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, "form", cfg.LoginTransport)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WELLBEING_BASE_URL", "https://api.example.com")
	t.Setenv("WELLBEING_ATTEMPT_TIMEOUT", "250ms")
	t.Setenv("WELLBEING_MAX_ATTEMPTS", "5")
	t.Setenv("WELLBEING_BACKOFF_BASE", "100ms")
	t.Setenv("WELLBEING_LOGIN_TRANSPORT", "json")
	t.Setenv("WELLBEING_TOKEN", "envtok")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.AttemptTimeout)
	assert.Equal(t, 5, cfg.MaxAttempts)

	c, err := NewFromEnv(WithMaxAttempts(2))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
	assert.Equal(t, 250*time.Millisecond, c.attemptTimeout)
	assert.Equal(t, 2, c.policy.MaxAttempts, "explicit options win over env")
	assert.Equal(t, LoginJSON, c.transport)
	assert.Equal(t, "envtok", c.Session().Token())
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("WELLBEING_MAX_ATTEMPTS", "many")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNewFromEnv_BadTransport(t *testing.T) {
	t.Setenv("WELLBEING_LOGIN_TRANSPORT", "soap")
	_, err := NewFromEnv()
	assert.Error(t, err)
}
