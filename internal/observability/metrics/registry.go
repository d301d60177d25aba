// Package metrics provides centralized Prometheus metrics for the digest pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch metrics track the fan-out aggregation stage
var (
	// SourceFetchesTotal counts per-source fetch outcomes
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Total number of source fetch attempts",
		},
		[]string{"outcome"}, // outcome: success, unavailable, unparseable
	)

	// SourceFetchDuration measures time to fetch and parse one source
	SourceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse one feed source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// ItemsAggregatedTotal counts items that survived the date window filter
	ItemsAggregatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_aggregated_total",
			Help: "Total number of feed items merged by the aggregation stage",
		},
	)
)

// Enrichment metrics track the sequential summarization stage
var (
	// SummariesTotal counts finalized category summaries by status
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Total number of category summaries finalized",
		},
		[]string{"status"}, // status: success, empty, degraded
	)

	// SummarizationDuration measures one summarization API call
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken by one summarization API call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SummaryRetriesTotal counts retried summarization attempts
	SummaryRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_retries_total",
			Help: "Total number of summarization attempts beyond the first",
		},
	)
)

// Content enhancement metrics
var (
	// ContentFetchAttemptsTotal counts full-article fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of full-article content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)
)

// Worker metrics track scheduled digest runs
var (
	// DigestRunsTotal counts digest job runs by status
	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total number of digest job runs",
		},
		[]string{"status"}, // status: started, success, failure
	)

	// DigestRunDuration measures one full digest run
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Time taken by one full digest run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// DigestLastSuccessTimestamp records the unix time of the last successful run
	DigestLastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful digest run",
		},
	)
)

// RecordSourceFetch records the outcome and duration of one source fetch.
func RecordSourceFetch(outcome string, duration time.Duration, items int) {
	SourceFetchesTotal.WithLabelValues(outcome).Inc()
	SourceFetchDuration.Observe(duration.Seconds())
	if items > 0 {
		ItemsAggregatedTotal.Add(float64(items))
	}
}

// RecordSummary records a finalized category summary.
func RecordSummary(status string) {
	SummariesTotal.WithLabelValues(status).Inc()
}

// RecordSummarization records the duration of one summarization API call.
func RecordSummarization(duration time.Duration) {
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordContentFetch records a content enhancement attempt.
func RecordContentFetch(result string) {
	ContentFetchAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordDigestRun records a digest job run.
func RecordDigestRun(status string, duration time.Duration) {
	DigestRunsTotal.WithLabelValues(status).Inc()
	if status == "success" || status == "failure" {
		DigestRunDuration.Observe(duration.Seconds())
	}
	if status == "success" {
		DigestLastSuccessTimestamp.SetToCurrentTime()
	}
}
