// Package fetcher provides implementations for retrieving remote feeds
// and article content. Feed parsing uses the gofeed library; every
// failure is classified and absorbed by the aggregation stage.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/usecase/aggregate"
)

// RSSFetcher implements aggregate.SourceFetcher using the gofeed
// library. One instance is safe for concurrent use by the scheduler's
// fan-out.
type RSSFetcher struct {
	client *http.Client
	config Config
}

// NewRSSFetcher creates a new RSSFetcher with the given configuration.
func NewRSSFetcher(cfg Config) *RSSFetcher {
	return &RSSFetcher{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}
}

// Fetch retrieves and parses one feed, bounded by the configured
// per-source timeout, and applies the date window. Failures are
// returned classified under aggregate.ErrSourceUnavailable or
// aggregate.ErrSourceUnparseable; they never panic and never affect
// other sources.
func (f *RSSFetcher) Fetch(ctx context.Context, src entity.Source, window entity.DateWindow) ([]entity.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.UserAgent = f.config.UserAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, classifyFeedError(src.URL, err)
	}

	sourceTitle := feed.Title
	if sourceTitle == "" {
		sourceTitle = src.Name
	}

	items := make([]entity.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		publishedAt := resolvePublished(it)
		if !window.Contains(publishedAt) {
			continue
		}

		body := it.Content
		if body == "" {
			body = it.Description
		}

		items = append(items, entity.Item{
			Title:       it.Title,
			Link:        it.Link,
			Body:        body,
			PublishedAt: publishedAt,
			SourceTitle: sourceTitle,
			Category:    src.Category,
		})
	}

	return items, nil
}

// classifyFeedError maps a gofeed failure onto the pipeline taxonomy:
// transport-level problems are unavailable, everything else is a
// malformed document.
func classifyFeedError(url string, err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %s returned HTTP %d", aggregate.ErrSourceUnavailable, url, httpErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", aggregate.ErrSourceUnavailable, url, err)
	}

	return fmt.Errorf("%w: %s: %v", aggregate.ErrSourceUnparseable, url, err)
}
