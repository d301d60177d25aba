// Package enrich implements the sequential per-category summarization
// stage. Categories are processed one at a time because the external
// summarization dependency is shared and possibly rate limited.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/observability/metrics"
	"feed-digest/internal/resilience/retry"
)

const (
	// promptItemCap bounds the number of items included in one
	// summarization request. The full item list is still attached to
	// the returned summary.
	promptItemCap = 50

	// PlaceholderEmpty is the overview used for categories with no items.
	PlaceholderEmpty = "No articles in this category."

	// PlaceholderFailed is the overview used when summarization failed
	// on every attempt, and as the per-field substitute when a response
	// is missing its overview.
	PlaceholderFailed = "Summary could not be generated."
)

// Summarizer is the external summarization operation. Implementations
// turn a prompt into a structured payload; any failure, including a
// non-parseable response, is returned as an error.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (*entity.SummaryPayload, error)
}

// ProgressFunc is invoked once per category immediately after its
// summary is finalized, before the next category starts. Callbacks are
// therefore totally ordered.
type ProgressFunc func(completed, total int, category string)

// Orchestrator drives one summarization call per category with bounded
// retries, degrading to placeholder summaries instead of failing.
type Orchestrator struct {
	summarizer Summarizer
	retryCfg   retry.Config
}

// NewOrchestrator creates an Orchestrator using the given summarizer
// and retry configuration.
func NewOrchestrator(summarizer Summarizer, retryCfg retry.Config) *Orchestrator {
	return &Orchestrator{
		summarizer: summarizer,
		retryCfg:   retryCfg,
	}
}

// EnrichAll produces exactly one CategorySummary per category, in the
// order the labels were first encountered during categorization. No
// category is ever dropped: empty categories short-circuit to a
// placeholder without calling the summarizer, and categories whose
// summarization exhausts all attempts degrade to a placeholder that
// still carries the real item list. onProgress may be nil.
func (o *Orchestrator) EnrichAll(ctx context.Context, groups *entity.CategoryGroups, onProgress ProgressFunc) []entity.CategorySummary {
	total := groups.Len()
	summaries := make([]entity.CategorySummary, 0, total)

	for i, label := range groups.Labels {
		summary := o.enrichOne(ctx, label, groups.Items[label])
		summaries = append(summaries, summary)
		if onProgress != nil {
			onProgress(i+1, total, label)
		}
	}

	return summaries
}

// enrichOne finalizes the summary for a single category.
func (o *Orchestrator) enrichOne(ctx context.Context, label string, items []entity.Item) entity.CategorySummary {
	if len(items) == 0 {
		metrics.RecordSummary("empty")
		return entity.CategorySummary{
			Category:   label,
			Overview:   PlaceholderEmpty,
			Highlights: []string{},
			Items:      []entity.Item{},
		}
	}

	prompt := BuildPrompt(label, capItems(items))

	var payload *entity.SummaryPayload
	attempts := 0
	err := retry.WithLinearBackoff(ctx, o.retryCfg, func() error {
		attempts++
		if attempts > 1 {
			metrics.SummaryRetriesTotal.Inc()
		}

		start := time.Now()
		result, callErr := o.summarizer.Summarize(ctx, prompt)
		metrics.RecordSummarization(time.Since(start))
		if callErr != nil {
			return callErr
		}
		payload = result
		return nil
	})

	if err != nil {
		slog.Warn("summarization exhausted, emitting placeholder",
			slog.String("category", label),
			slog.Int("attempts", attempts),
			slog.Any("error", err))
		metrics.RecordSummary("degraded")
		return entity.CategorySummary{
			Category:   label,
			Overview:   PlaceholderFailed,
			Highlights: []string{},
			Items:      items,
		}
	}

	metrics.RecordSummary("success")
	return entity.CategorySummary{
		Category:   label,
		Overview:   overviewOrPlaceholder(payload.Overview),
		Highlights: highlightsOrEmpty(payload.Highlights),
		Items:      items,
	}
}

// capItems bounds the request size; the caller keeps the full list.
func capItems(items []entity.Item) []entity.Item {
	if len(items) <= promptItemCap {
		return items
	}
	return items[:promptItemCap]
}

// overviewOrPlaceholder substitutes the placeholder text when a
// successful response is missing its overview. Partial degradation:
// the highlights are kept if present.
func overviewOrPlaceholder(overview string) string {
	if overview == "" {
		return PlaceholderFailed
	}
	return overview
}

func highlightsOrEmpty(highlights []string) []string {
	if highlights == nil {
		return []string{}
	}
	return highlights
}
