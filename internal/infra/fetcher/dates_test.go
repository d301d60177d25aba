package fetcher

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func TestResolvePublishedPrefersPublishedParsed(t *testing.T) {
	published := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	it := &gofeed.Item{PublishedParsed: &published, UpdatedParsed: &updated}

	got := resolvePublished(it)
	if got == nil || !got.Equal(published) {
		t.Errorf("resolvePublished = %v, want %v", got, published)
	}
}

func TestResolvePublishedFallsBackToUpdated(t *testing.T) {
	updated := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	it := &gofeed.Item{UpdatedParsed: &updated}

	got := resolvePublished(it)
	if got == nil || !got.Equal(updated) {
		t.Errorf("resolvePublished = %v, want %v", got, updated)
	}
}

func TestResolvePublishedParsesRawStrings(t *testing.T) {
	it := &gofeed.Item{Published: "2026-08-20T09:30:00Z"}

	got := resolvePublished(it)
	if got == nil {
		t.Fatal("resolvePublished = nil, want parsed raw date")
	}
	want := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("resolvePublished = %v, want %v", got, want)
	}
}

func TestResolvePublishedUsesDublinCoreDate(t *testing.T) {
	it := &gofeed.Item{
		DublinCoreExt: &ext.DublinCoreExtension{Date: []string{"2026-07-04"}},
	}

	got := resolvePublished(it)
	if got == nil {
		t.Fatal("resolvePublished = nil, want Dublin Core date")
	}
	if got.Year() != 2026 || got.Month() != time.July || got.Day() != 4 {
		t.Errorf("resolvePublished = %v, want 2026-07-04", got)
	}
}

func TestResolvePublishedUnparseableDatesResolveToNil(t *testing.T) {
	tests := []struct {
		name string
		item *gofeed.Item
	}{
		{name: "no dates at all", item: &gofeed.Item{}},
		{name: "garbage raw string", item: &gofeed.Item{Published: "sometime last week"}},
		{name: "empty strings", item: &gofeed.Item{Published: "", Updated: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePublished(tt.item); got != nil {
				t.Errorf("resolvePublished = %v, want nil", got)
			}
		})
	}
}
