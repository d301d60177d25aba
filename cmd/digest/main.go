// Command digest runs the feed digest pipeline once: parse an OPML
// subscription list, aggregate every feed concurrently, categorize and
// summarize the results, and render them under the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/infra/fetcher"
	"feed-digest/internal/infra/opml"
	"feed-digest/internal/infra/output"
	"feed-digest/internal/infra/summarizer"
	"feed-digest/internal/observability/logging"
	"feed-digest/internal/resilience/retry"
	"feed-digest/internal/usecase/aggregate"
	"feed-digest/internal/usecase/digest"
	"feed-digest/internal/usecase/enrich"
)

const digestLink = "https://github.com/feed-digest/feed-digest"

type cliFlags struct {
	input       string
	out         string
	since       string
	until       string
	format      string
	skipSummary bool
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	flags := parseFlags()

	window, err := buildWindow(flags.since, flags.until)
	if err != nil {
		fmt.Fprintf(os.Stderr, "digest: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	sources, err := opml.ParseFile(flags.input)
	if err != nil {
		logger.Error("failed to parse subscription list",
			slog.String("path", flags.input),
			slog.Any("error", err))
		os.Exit(1)
	}
	if len(sources) == 0 {
		logger.Error("subscription list contains no feeds", slog.String("path", flags.input))
		os.Exit(1)
	}

	sum, retryCfg := buildSummarizer(logger, flags.skipSummary)
	svc := buildService(logger, sum, retryCfg, buildWriters(flags.out, flags.format))

	stats, err := svc.Run(context.Background(), sources, window)
	if err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("digest written",
		slog.String("out", flags.out),
		slog.Int("sources", stats.Fetch.Sources),
		slog.Int("failed_sources", stats.Fetch.Failed),
		slog.Int("items", stats.Fetch.Items),
		slog.Int("categories", stats.Categories))
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.input, "input", "", "path to the OPML subscription list (required)")
	flag.StringVar(&flags.out, "out", "./digest", "output directory")
	flag.StringVar(&flags.since, "since", "", "only include items published on or after this date (2006-01-02 or RFC 3339)")
	flag.StringVar(&flags.until, "until", "", "only include items published on or before this date (2006-01-02 or RFC 3339)")
	flag.StringVar(&flags.format, "format", "markdown", "rendered output format: markdown, rss, or all")
	flag.BoolVar(&flags.skipSummary, "skip-summary", false, "skip AI summarization and emit placeholder overviews")
	flag.Parse()

	if flags.input == "" {
		fmt.Fprintln(os.Stderr, "digest: -input is required")
		flag.Usage()
		os.Exit(1)
	}
	switch flags.format {
	case "markdown", "rss", "all":
	default:
		fmt.Fprintf(os.Stderr, "digest: invalid -format %q (markdown, rss, or all)\n", flags.format)
		flag.Usage()
		os.Exit(1)
	}
	return flags
}

// buildWindow parses the since/until flags. Both accept a plain date or
// a full RFC 3339 timestamp; a plain until date extends to the end of
// that day.
func buildWindow(since, until string) (entity.DateWindow, error) {
	var window entity.DateWindow
	if since != "" {
		t, _, err := parseDateFlag(since)
		if err != nil {
			return window, fmt.Errorf("invalid -since value %q: %w", since, err)
		}
		window.Since = &t
	}
	if until != "" {
		t, dateOnly, err := parseDateFlag(until)
		if err != nil {
			return window, fmt.Errorf("invalid -until value %q: %w", until, err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		window.Until = &t
	}
	return window, nil
}

func parseDateFlag(value string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("expected 2006-01-02 or RFC 3339")
}

// buildSummarizer selects the summarization backend. With skip-summary
// the NoOp backend is used and no credential is needed; otherwise a
// missing API key for the configured provider is fatal.
func buildSummarizer(logger *slog.Logger, skipSummary bool) (enrich.Summarizer, retry.Config) {
	if skipSummary {
		logger.Info("summarization skipped by flag")
		return summarizer.NewNoOp(), retry.DefaultConfig()
	}

	cfg, err := summarizer.LoadConfig()
	if err != nil {
		logger.Error("invalid summarizer configuration", slog.Any("error", err))
		os.Exit(1)
	}

	switch cfg.Provider {
	case summarizer.ProviderClaude:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when SUMMARIZER_PROVIDER=claude")
			os.Exit(1)
		}
		logger.Info("using Claude for summarization")
		return summarizer.NewClaude(apiKey, cfg), retry.SummarizeConfig()
	case summarizer.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY is required when SUMMARIZER_PROVIDER=openai")
			os.Exit(1)
		}
		logger.Info("using OpenAI for summarization")
		return summarizer.NewOpenAI(apiKey, cfg), retry.SummarizeConfig()
	default:
		logger.Info("summarization disabled by configuration")
		return summarizer.NewNoOp(), retry.DefaultConfig()
	}
}

func buildWriters(out, format string) []digest.Writer {
	writers := []digest.Writer{output.NewRawWriter(out)}
	if format == "markdown" || format == "all" {
		writers = append(writers, output.NewMarkdownWriter(out))
	}
	if format == "rss" || format == "all" {
		writers = append(writers, output.NewRSSWriter(out, digestLink))
	}
	return writers
}

func buildService(logger *slog.Logger, sum enrich.Summarizer, retryCfg retry.Config, writers []digest.Writer) *digest.Service {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid fetch configuration, using defaults", slog.Any("error", err))
		fetchCfg = fetcher.DefaultConfig()
	}

	var content digest.ContentFetcher
	if fetchCfg.Content.Enabled {
		content = fetcher.NewReadabilityFetcher(fetchCfg)
		logger.Info("content enhancement enabled",
			slog.Int("threshold", fetchCfg.Content.Threshold),
			slog.Int("parallelism", fetchCfg.Content.Parallelism))
	}

	return digest.NewService(
		aggregate.NewScheduler(fetcher.NewRSSFetcher(fetchCfg)),
		enrich.NewOrchestrator(sum, retryCfg),
		content,
		fetchCfg.Content,
		writers...,
	)
}
