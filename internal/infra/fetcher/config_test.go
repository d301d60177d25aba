package fetcher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-digest/internal/infra/fetcher"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := fetcher.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Content.Enabled)
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "10s")
	t.Setenv("CONTENT_FETCH_ENABLED", "true")
	t.Setenv("CONTENT_FETCH_THRESHOLD", "2000")
	t.Setenv("CONTENT_FETCH_PARALLELISM", "4")

	cfg, err := fetcher.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.Content.Enabled)
	assert.Equal(t, 2000, cfg.Content.Threshold)
	assert.Equal(t, 4, cfg.Content.Parallelism)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = fetcher.DefaultConfig()
	cfg.Content.Enabled = true
	cfg.Content.Parallelism = 0
	assert.Error(t, cfg.Validate())
}
