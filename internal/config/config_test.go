package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsort/subsort/internal/scanner"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 50, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.FollowRedirects)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ConcurrencyBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg.Concurrency = -5
	assert.Error(t, cfg.Validate())

	// Values above the ceiling clamp silently.
	cfg.Concurrency = 1000
	require.NoError(t, cfg.Validate())
	assert.Equal(t, scanner.MaxConcurrency, cfg.Concurrency)
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := Defaults()
	cfg.Retries = -1
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Delay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.RequestsPerSecond = -1
	assert.Error(t, cfg.Validate())
}
