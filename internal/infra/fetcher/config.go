package fetcher

import (
	"fmt"
	"time"

	pkgconfig "feed-digest/internal/pkg/config"
)

// Config holds configuration for feed fetching.
type Config struct {
	// Timeout is the hard per-source timeout. A source that does not
	// respond within it contributes zero items.
	Timeout time.Duration

	// UserAgent is sent with every feed and article request.
	UserAgent string

	// Content configures full-article content enhancement.
	Content ContentConfig
}

// ContentConfig holds configuration for fetching full article content
// when a feed entry's body is too short to summarize well.
type ContentConfig struct {
	// Enabled toggles the feature. Disabled means feed bodies are used as-is.
	Enabled bool

	// Threshold is the minimum feed body length (bytes) below which the
	// full article is fetched.
	Threshold int

	// Parallelism is the maximum number of concurrent article fetches.
	Parallelism int

	// Timeout is the per-article request timeout.
	Timeout time.Duration

	// MaxBodySize limits the article response size in bytes.
	MaxBodySize int64

	// MaxRedirects limits redirect chains.
	MaxRedirects int
}

// DefaultConfig returns the default fetch configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: "feed-digest/1.0",
		Content: ContentConfig{
			Enabled:      false,
			Threshold:    1500,
			Parallelism:  10,
			Timeout:      15 * time.Second,
			MaxBodySize:  5 << 20, // 5MB
			MaxRedirects: 5,
		},
	}
}

// LoadConfigFromEnv loads fetch configuration from environment
// variables, falling back to defaults.
//
// Environment variables:
//   - FETCH_TIMEOUT: per-source timeout (default: 30s)
//   - FETCH_USER_AGENT: User-Agent header value
//   - CONTENT_FETCH_ENABLED: enable content enhancement (default: false)
//   - CONTENT_FETCH_THRESHOLD: body length threshold (default: 1500)
//   - CONTENT_FETCH_PARALLELISM: concurrent article fetches (default: 10)
//   - CONTENT_FETCH_TIMEOUT: per-article timeout (default: 15s)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Timeout = pkgconfig.GetEnvDuration("FETCH_TIMEOUT", cfg.Timeout)
	cfg.UserAgent = pkgconfig.GetEnvString("FETCH_USER_AGENT", cfg.UserAgent)
	cfg.Content.Enabled = pkgconfig.GetEnvBool("CONTENT_FETCH_ENABLED", cfg.Content.Enabled)
	cfg.Content.Threshold = pkgconfig.GetEnvInt("CONTENT_FETCH_THRESHOLD", cfg.Content.Threshold)
	cfg.Content.Parallelism = pkgconfig.GetEnvInt("CONTENT_FETCH_PARALLELISM", cfg.Content.Parallelism)
	cfg.Content.Timeout = pkgconfig.GetEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Content.Timeout)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks configuration bounds.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.Timeout)
	}
	if c.Content.Enabled {
		if c.Content.Threshold < 0 {
			return fmt.Errorf("content threshold must not be negative, got %d", c.Content.Threshold)
		}
		if c.Content.Parallelism < 1 {
			return fmt.Errorf("content parallelism must be at least 1, got %d", c.Content.Parallelism)
		}
		if c.Content.Timeout <= 0 {
			return fmt.Errorf("content timeout must be positive, got %v", c.Content.Timeout)
		}
	}
	return nil
}
