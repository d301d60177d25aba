// Package worker holds the configuration for the scheduled digest
// daemon. Values come from three layers: built-in defaults, an optional
// YAML file, and environment variable overrides, in that order.
package worker

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	pkgconfig "feed-digest/internal/pkg/config"
)

// Config controls the digest worker daemon.
type Config struct {
	// CronSchedule is the cron expression or @every interval between
	// digest runs.
	CronSchedule string `yaml:"cron_schedule"`

	// Timezone is the IANA timezone name used by the cron scheduler.
	Timezone string `yaml:"timezone"`

	// RunTimeout bounds one digest run end to end.
	RunTimeout time.Duration `yaml:"run_timeout"`

	// MetricsPort is the port for the Prometheus metrics and health
	// endpoints.
	MetricsPort int `yaml:"metrics_port"`

	// OPMLPath is the subscription list read before each run.
	OPMLPath string `yaml:"opml_path"`

	// OutputDir is the root directory for rendered digests.
	OutputDir string `yaml:"output_dir"`

	// Lookback is how far back each run's date window reaches.
	Lookback time.Duration `yaml:"lookback"`

	// Formats selects the rendered outputs: "markdown", "rss" or both.
	// Raw JSON is always written.
	Formats []string `yaml:"formats"`
}

// DefaultConfig returns the built-in worker defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "@every 6h",
		Timezone:     "UTC",
		RunTimeout:   15 * time.Minute,
		MetricsPort:  9090,
		OPMLPath:     "subscriptions.opml",
		OutputDir:    "./digest",
		Lookback:     24 * time.Hour,
		Formats:      []string{"markdown"},
	}
}

// LoadConfig builds the worker configuration. If DIGEST_CONFIG_FILE is
// set, that YAML file is loaded over the defaults; environment
// variables override both. The result is validated.
//
// Environment variables:
//   - DIGEST_CONFIG_FILE: optional YAML config path
//   - DIGEST_CRON_SCHEDULE: schedule between runs (default: @every 6h)
//   - DIGEST_TIMEZONE: scheduler timezone (default: UTC)
//   - DIGEST_RUN_TIMEOUT: per-run timeout (default: 15m)
//   - METRICS_PORT: metrics server port (default: 9090)
//   - DIGEST_OPML_PATH: subscription list path
//   - DIGEST_OUTPUT_DIR: output directory (default: ./digest)
//   - DIGEST_LOOKBACK: date window length (default: 24h)
//   - DIGEST_FORMATS: comma-separated output formats
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("DIGEST_CONFIG_FILE"); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.CronSchedule = pkgconfig.GetEnvString("DIGEST_CRON_SCHEDULE", cfg.CronSchedule)
	cfg.Timezone = pkgconfig.GetEnvString("DIGEST_TIMEZONE", cfg.Timezone)
	cfg.RunTimeout = pkgconfig.GetEnvDuration("DIGEST_RUN_TIMEOUT", cfg.RunTimeout)
	cfg.MetricsPort = pkgconfig.GetEnvInt("METRICS_PORT", cfg.MetricsPort)
	cfg.OPMLPath = pkgconfig.GetEnvString("DIGEST_OPML_PATH", cfg.OPMLPath)
	cfg.OutputDir = pkgconfig.GetEnvString("DIGEST_OUTPUT_DIR", cfg.OutputDir)
	cfg.Lookback = pkgconfig.GetEnvDuration("DIGEST_LOOKBACK", cfg.Lookback)
	cfg.Formats = pkgconfig.GetEnvStringList("DIGEST_FORMATS", cfg.Formats)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the daemon cannot run
// with.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", c.CronSchedule, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive, got %s", c.RunTimeout)
	}
	if c.MetricsPort < 1024 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be in [1024, 65535], got %d", c.MetricsPort)
	}
	if c.OPMLPath == "" {
		return fmt.Errorf("opml path is required")
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %s", c.Lookback)
	}
	for _, format := range c.Formats {
		switch strings.ToLower(format) {
		case "markdown", "rss":
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}
	return nil
}
