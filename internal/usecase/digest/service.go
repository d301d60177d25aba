// Package digest wires the pipeline stages together: concurrent source
// aggregation, optional content enhancement, categorization, enrichment
// and output rendering. It is the single entrypoint used by both the
// CLI and the worker daemon.
package digest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/infra/fetcher"
	"feed-digest/internal/observability/metrics"
	"feed-digest/internal/usecase/aggregate"
	"feed-digest/internal/usecase/categorize"
	"feed-digest/internal/usecase/enrich"
)

// ContentFetcher retrieves the readable text of an article page. An
// error means the feed-provided body is kept.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Writer renders the finished summaries to some destination.
type Writer interface {
	Write(summaries []entity.CategorySummary) error
}

// Stats summarizes one pipeline run.
type Stats struct {
	Fetch      aggregate.FetchStats
	Categories int
	Enhanced   int
	Duration   time.Duration
}

// Service runs the digest pipeline end to end.
type Service struct {
	scheduler    *aggregate.Scheduler
	orchestrator *enrich.Orchestrator
	content      ContentFetcher
	contentCfg   fetcher.ContentConfig
	writers      []Writer
}

// NewService assembles a pipeline. content may be nil, in which case
// content enhancement is skipped regardless of contentCfg.Enabled.
func NewService(scheduler *aggregate.Scheduler, orchestrator *enrich.Orchestrator, content ContentFetcher, contentCfg fetcher.ContentConfig, writers ...Writer) *Service {
	return &Service{
		scheduler:    scheduler,
		orchestrator: orchestrator,
		content:      content,
		contentCfg:   contentCfg,
		writers:      writers,
	}
}

// Run executes one full digest pass over the given sources. Source and
// summarization failures degrade the result rather than failing the
// run; only output writing returns an error.
func (s *Service) Run(ctx context.Context, sources []entity.Source, window entity.DateWindow) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	items, fetchStats := s.scheduler.FetchAll(ctx, sources, window, func(completed, total int) {
		slog.Debug("source settled", slog.Int("completed", completed), slog.Int("total", total))
	})
	stats.Fetch = *fetchStats

	stats.Enhanced = s.enhanceContent(ctx, items)

	groups := categorize.Categorize(items)
	stats.Categories = groups.Len()

	summaries := s.orchestrator.EnrichAll(ctx, groups, func(completed, total int, category string) {
		slog.Info("category enriched",
			slog.Int("completed", completed),
			slog.Int("total", total),
			slog.String("category", category))
	})

	for _, w := range s.writers {
		if err := w.Write(summaries); err != nil {
			stats.Duration = time.Since(start)
			metrics.RecordDigestRun("failure", stats.Duration)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	metrics.RecordDigestRun("success", stats.Duration)
	slog.Info("digest run completed",
		slog.Int("sources", stats.Fetch.Sources),
		slog.Int("items", stats.Fetch.Items),
		slog.Int("categories", stats.Categories),
		slog.Int("enhanced", stats.Enhanced),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// enhanceContent replaces short feed bodies with the readable article
// text, bounded by the configured parallelism. Fetch failures keep the
// original body. Returns the number of items enhanced.
func (s *Service) enhanceContent(ctx context.Context, items []entity.Item) int {
	if s.content == nil || !s.contentCfg.Enabled {
		return 0
	}

	var (
		mu       sync.Mutex
		enhanced int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.contentCfg.Parallelism)

	for i := range items {
		if len(items[i].Body) >= s.contentCfg.Threshold || items[i].Link == "" {
			continue
		}
		g.Go(func() error {
			text, err := s.content.FetchContent(gctx, items[i].Link)
			if err != nil {
				metrics.RecordContentFetch("failure")
				slog.Debug("content fetch failed, keeping feed body",
					slog.String("url", items[i].Link),
					slog.Any("error", err))
				return nil
			}
			metrics.RecordContentFetch("success")
			mu.Lock()
			items[i].Body = text
			enhanced++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return enhanced
}
