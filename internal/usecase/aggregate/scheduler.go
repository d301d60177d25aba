// Package aggregate implements the fan-out fetch stage of the digest
// pipeline. All sources are fetched concurrently; each fetch settles
// independently and failures are absorbed, never propagated.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/observability/metrics"
)

// SourceFetcher fetches one remote source, applying the date window.
// A failed fetch returns an error classified under ErrSourceUnavailable
// or ErrSourceUnparseable; it must never panic.
type SourceFetcher interface {
	Fetch(ctx context.Context, src entity.Source, window entity.DateWindow) ([]entity.Item, error)
}

// ProgressFunc is invoked exactly once per completed source, in
// completion order, with the running completed count and the total.
type ProgressFunc func(completed, total int)

// FetchStats summarizes one fan-out run. Per-source outcomes are not
// exposed; callers see only aggregated counts and the merged item list.
type FetchStats struct {
	Sources   int
	Succeeded int
	Failed    int
	Items     int
	Duration  time.Duration
}

// Scheduler fans out one fetch per source and merges the successful
// partial results.
type Scheduler struct {
	fetcher SourceFetcher
}

// NewScheduler creates a Scheduler backed by the given fetcher.
func NewScheduler(fetcher SourceFetcher) *Scheduler {
	return &Scheduler{fetcher: fetcher}
}

// fetchOutcome is the settled result of one source, success or failure.
type fetchOutcome struct {
	source entity.Source
	items  []entity.Item
	err    error
}

// FetchAll launches one fetch per source, all concurrently, and returns
// the concatenation of all successful results in completion order.
// A failing source contributes zero items and is logged; it never
// cancels or delays the other fetches. onProgress may be nil.
func (s *Scheduler) FetchAll(ctx context.Context, sources []entity.Source, window entity.DateWindow, onProgress ProgressFunc) ([]entity.Item, *FetchStats) {
	start := time.Now()
	total := len(sources)
	stats := &FetchStats{Sources: total}

	var (
		mu     sync.Mutex
		merged []entity.Item
	)

	// errgroup is used purely as a join barrier: every task returns nil
	// so one source's failure can never cancel the siblings.
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			fetchStart := time.Now()
			items, err := s.fetcher.Fetch(gctx, src, window)
			s.settle(fetchOutcome{source: src, items: items, err: err}, time.Since(fetchStart), stats, &merged, &mu, onProgress, total)
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(start)
	slog.Info("aggregation completed",
		slog.Int("sources", stats.Sources),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.Int("items", stats.Items),
		slog.Duration("duration", stats.Duration))

	return merged, stats
}

// settle records one outcome under the mutex: merge order and progress
// callbacks therefore both follow completion order, and callbacks are
// totally serialized.
func (s *Scheduler) settle(out fetchOutcome, took time.Duration, stats *FetchStats, merged *[]entity.Item, mu *sync.Mutex, onProgress ProgressFunc, total int) {
	mu.Lock()
	defer mu.Unlock()

	if out.err != nil {
		stats.Failed++
		metrics.RecordSourceFetch(outcomeLabel(out.err), took, 0)
		slog.Warn("source fetch failed",
			slog.String("source", out.source.Name),
			slog.String("url", out.source.URL),
			slog.Any("error", out.err))
	} else {
		stats.Succeeded++
		stats.Items += len(out.items)
		metrics.RecordSourceFetch("success", took, len(out.items))
		*merged = append(*merged, out.items...)
	}

	completed := stats.Succeeded + stats.Failed
	if onProgress != nil {
		onProgress(completed, total)
	}
}

func outcomeLabel(err error) string {
	if errors.Is(err, ErrSourceUnparseable) {
		return "unparseable"
	}
	return "unavailable"
}
