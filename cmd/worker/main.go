// Command worker runs the digest pipeline on a cron schedule and
// exposes Prometheus metrics. It re-reads the OPML subscription list
// before every run so feed changes are picked up without a restart.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/infra/fetcher"
	"feed-digest/internal/infra/opml"
	"feed-digest/internal/infra/output"
	"feed-digest/internal/infra/summarizer"
	workerPkg "feed-digest/internal/infra/worker"
	"feed-digest/internal/observability/logging"
	"feed-digest/internal/resilience/retry"
	"feed-digest/internal/usecase/aggregate"
	"feed-digest/internal/usecase/digest"
	"feed-digest/internal/usecase/enrich"
)

const digestLink = "https://github.com/feed-digest/feed-digest"

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := workerPkg.LoadConfig()
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("run_timeout", cfg.RunTimeout),
		slog.Duration("lookback", cfg.Lookback),
		slog.Int("metrics_port", cfg.MetricsPort))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startMetricsServer(ctx, logger, cfg.MetricsPort)

	svc := setupDigestService(logger, cfg)
	startCronWorker(ctx, logger, svc, cfg)
}

// setupDigestService assembles the pipeline the same way cmd/digest
// does, with writers selected by the worker configuration.
func setupDigestService(logger *slog.Logger, cfg workerPkg.Config) *digest.Service {
	sum, retryCfg := createSummarizer(logger)

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

	writers := []digest.Writer{output.NewRawWriter(cfg.OutputDir)}
	for _, format := range cfg.Formats {
		switch strings.ToLower(format) {
		case "markdown":
			writers = append(writers, output.NewMarkdownWriter(cfg.OutputDir))
		case "rss":
			writers = append(writers, output.NewRSSWriter(cfg.OutputDir, digestLink))
		}
	}

	return digest.NewService(
		aggregate.NewScheduler(fetcher.NewRSSFetcher(fetchCfg)),
		enrich.NewOrchestrator(sum, retryCfg),
		content,
		fetchCfg.Content,
		writers...,
	)
}

// createSummarizer selects the backend from SUMMARIZER_PROVIDER. The
// worker treats a missing credential as fatal, matching cmd/digest.
func createSummarizer(logger *slog.Logger) (enrich.Summarizer, retry.Config) {
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

// startCronWorker schedules digest runs and blocks until the context
// is canceled by SIGINT or SIGTERM.
func startCronWorker(ctx context.Context, logger *slog.Logger, svc *digest.Service, cfg workerPkg.Config) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runDigestJob(logger, svc, cfg)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("worker stopped")
	case <-time.After(30 * time.Second):
		logger.Warn("worker stop timed out, exiting anyway")
	}
}

// runDigestJob executes one scheduled digest run with a timeout. The
// subscription list is re-read each time.
func runDigestJob(logger *slog.Logger, svc *digest.Service, cfg workerPkg.Config) {
	logger.Info("digest run started")

	sources, err := opml.ParseFile(cfg.OPMLPath)
	if err != nil {
		logger.Error("failed to parse subscription list",
			slog.String("path", cfg.OPMLPath),
			slog.Any("error", err))
		return
	}

	since := time.Now().Add(-cfg.Lookback)
	window := entity.DateWindow{Since: &since}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	stats, err := svc.Run(ctx, sources, window)
	if err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
		return
	}

	logger.Info("digest run finished",
		slog.Int("sources", stats.Fetch.Sources),
		slog.Int("failed_sources", stats.Fetch.Failed),
		slog.Int("items", stats.Fetch.Items),
		slog.Int("categories", stats.Categories),
		slog.Duration("duration", stats.Duration))
}
