package summarizer

import (
	"fmt"
	"time"

	pkgconfig "feed-digest/internal/pkg/config"
)

// Provider identifies a summarization backend.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderNone   Provider = "none"
)

// Config holds configuration parameters shared by the summarizer
// implementations. It is constructed once at startup and passed into
// the constructors; nothing here is read from the environment at call
// time.
type Config struct {
	// Provider selects the backend: claude, openai, or none.
	Provider Provider

	// Model is the API model identifier. Empty selects the provider default.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single summarization API call.
	Timeout time.Duration

	// RequestsPerMinute paces calls to the shared API. Zero disables pacing.
	RequestsPerMinute int
}

// LoadConfig loads summarizer configuration from environment variables.
//
// Environment variables:
//   - SUMMARIZER_PROVIDER: claude, openai, or none (default: claude)
//   - SUMMARIZER_MODEL: model identifier (default: provider-specific)
//   - SUMMARIZER_MAX_TOKENS: response token cap (default: 1024)
//   - SUMMARIZER_TIMEOUT: per-call timeout (default: 60s)
//   - SUMMARIZER_REQUESTS_PER_MINUTE: client-side pacing (default: 20)
func LoadConfig() (Config, error) {
	cfg := Config{
		Provider:          Provider(pkgconfig.GetEnvString("SUMMARIZER_PROVIDER", string(ProviderClaude))),
		Model:             pkgconfig.GetEnvString("SUMMARIZER_MODEL", ""),
		MaxTokens:         pkgconfig.GetEnvInt("SUMMARIZER_MAX_TOKENS", 1024),
		Timeout:           pkgconfig.GetEnvDuration("SUMMARIZER_TIMEOUT", 60*time.Second),
		RequestsPerMinute: pkgconfig.GetEnvInt("SUMMARIZER_REQUESTS_PER_MINUTE", 20),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderClaude, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("invalid summarizer provider %q (must be claude, openai, or none)", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute must not be negative, got %d", c.RequestsPerMinute)
	}
	return nil
}
