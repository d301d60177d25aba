package aggregate_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/usecase/aggregate"
)

// stubFetcher resolves each source according to a per-URL script.
type stubFetcher struct {
	mu      sync.Mutex
	items   map[string][]entity.Item
	errs    map[string]error
	delays  map[string]time.Duration
	fetched []string
}

func (f *stubFetcher) Fetch(_ context.Context, src entity.Source, _ entity.DateWindow) ([]entity.Item, error) {
	if d, ok := f.delays[src.URL]; ok {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.fetched = append(f.fetched, src.URL)
	f.mu.Unlock()
	if err, ok := f.errs[src.URL]; ok {
		return nil, err
	}
	return f.items[src.URL], nil
}

func makeSources(n int) []entity.Source {
	sources := make([]entity.Source, 0, n)
	for i := 0; i < n; i++ {
		sources = append(sources, entity.Source{
			URL:      fmt.Sprintf("https://example.com/feed-%d.xml", i),
			Name:     fmt.Sprintf("Feed %d", i),
			Category: "Tech",
		})
	}
	return sources
}

func TestFetchAllProgressCalledOncePerSource(t *testing.T) {
	sources := makeSources(5)
	fetcher := &stubFetcher{items: map[string][]entity.Item{}}
	for _, src := range sources {
		fetcher.items[src.URL] = []entity.Item{{Title: src.Name, Category: src.Category}}
	}

	var completedSeen []int
	var totalsSeen []int
	_, stats := aggregate.NewScheduler(fetcher).FetchAll(
		context.Background(), sources, entity.DateWindow{},
		func(completed, total int) {
			completedSeen = append(completedSeen, completed)
			totalsSeen = append(totalsSeen, total)
		})

	if len(completedSeen) != len(sources) {
		t.Fatalf("progress callbacks = %d, want %d", len(completedSeen), len(sources))
	}
	for i, c := range completedSeen {
		if c != i+1 {
			t.Errorf("completed[%d] = %d, want %d (strictly increasing)", i, c, i+1)
		}
		if totalsSeen[i] != len(sources) {
			t.Errorf("total[%d] = %d, want %d", i, totalsSeen[i], len(sources))
		}
	}
	if stats.Succeeded != 5 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 5 succeeded, 0 failed", stats)
	}
}

func TestFetchAllIsolatesFailingSource(t *testing.T) {
	sources := makeSources(4)
	fetcher := &stubFetcher{
		items: map[string][]entity.Item{},
		errs:  map[string]error{sources[1].URL: aggregate.ErrSourceUnavailable},
	}
	for i, src := range sources {
		if i == 1 {
			continue
		}
		fetcher.items[src.URL] = []entity.Item{
			{Title: src.Name + " a"},
			{Title: src.Name + " b"},
		}
	}

	items, stats := aggregate.NewScheduler(fetcher).FetchAll(
		context.Background(), sources, entity.DateWindow{}, nil)

	if len(items) != 6 {
		t.Errorf("merged items = %d, want 6 (failing source contributes nothing)", len(items))
	}
	if stats.Failed != 1 || stats.Succeeded != 3 {
		t.Errorf("stats = %+v, want 3 succeeded, 1 failed", stats)
	}
}

func TestFetchAllSlowSourceDoesNotBlockOthers(t *testing.T) {
	sources := makeSources(3)
	fetcher := &stubFetcher{
		items:  map[string][]entity.Item{},
		delays: map[string]time.Duration{sources[2].URL: 150 * time.Millisecond},
	}
	for _, src := range sources {
		fetcher.items[src.URL] = []entity.Item{{Title: src.Name}}
	}

	type progressEvent struct {
		completed int
		at        time.Time
	}
	var events []progressEvent
	start := time.Now()

	aggregate.NewScheduler(fetcher).FetchAll(
		context.Background(), sources, entity.DateWindow{},
		func(completed, _ int) {
			events = append(events, progressEvent{completed: completed, at: time.Now()})
		})

	if len(events) != 3 {
		t.Fatalf("progress callbacks = %d, want 3", len(events))
	}
	// The two fast sources settle well before the slow one.
	if d := events[1].at.Sub(start); d > 100*time.Millisecond {
		t.Errorf("second source settled after %v; slow source delayed its siblings", d)
	}
}

func TestFetchAllEmptySourceStillCountsTowardProgress(t *testing.T) {
	sources := makeSources(2)
	fetcher := &stubFetcher{
		items: map[string][]entity.Item{
			sources[0].URL: nil, // empty feed
			sources[1].URL: {{Title: "one"}},
		},
	}

	var callbacks int
	items, stats := aggregate.NewScheduler(fetcher).FetchAll(
		context.Background(), sources, entity.DateWindow{},
		func(int, int) { callbacks++ })

	if callbacks != 2 {
		t.Errorf("callbacks = %d, want 2", callbacks)
	}
	if len(items) != 1 {
		t.Errorf("merged items = %d, want 1", len(items))
	}
	if stats.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2 (empty feed is still a success)", stats.Succeeded)
	}
}

func TestFetchAllNoSources(t *testing.T) {
	fetcher := &stubFetcher{}
	items, stats := aggregate.NewScheduler(fetcher).FetchAll(
		context.Background(), nil, entity.DateWindow{}, nil)

	if len(items) != 0 || stats.Sources != 0 {
		t.Errorf("expected empty result for empty source list, got %d items, %+v", len(items), stats)
	}
}
