package enrich_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/resilience/retry"
	"feed-digest/internal/usecase/enrich"
)

// scriptedSummarizer fails a fixed number of times before succeeding.
type scriptedSummarizer struct {
	failures int
	payload  *entity.SummaryPayload
	calls    int
	prompts  []string
}

func (s *scriptedSummarizer) Summarize(_ context.Context, prompt string) (*entity.SummaryPayload, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.calls <= s.failures {
		return nil, errors.New("transient summarization failure")
	}
	return s.payload, nil
}

func zeroDelayConfig(slept *[]time.Duration) retry.Config {
	return retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		},
	}
}

func groupsOf(label string, items ...entity.Item) *entity.CategoryGroups {
	groups := &entity.CategoryGroups{}
	for _, item := range items {
		groups.Add(label, item)
	}
	return groups
}

func TestEnrichAllSucceedsOnThirdAttemptWithLinearBackoff(t *testing.T) {
	var slept []time.Duration
	summarizer := &scriptedSummarizer{
		failures: 2,
		payload:  &entity.SummaryPayload{Overview: "the overview", Highlights: []string{"h1"}},
	}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(&slept))

	summaries := o.EnrichAll(context.Background(),
		groupsOf("Tech", entity.Item{Title: "a"}), nil)

	if summarizer.calls != 3 {
		t.Errorf("calls = %d, want 3", summarizer.calls)
	}
	if summaries[0].Overview != "the overview" {
		t.Errorf("overview = %q, want the successful result", summaries[0].Overview)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(slept) != 2 || slept[0] != want[0] || slept[1] != want[1] {
		t.Errorf("backoff delays = %v, want %v", slept, want)
	}
}

// timeoutSummarizer simulates a client whose per-call deadline fires
// on the first attempts; the returned error wraps the context error the
// way the real clients do.
type timeoutSummarizer struct {
	timeouts int
	payload  *entity.SummaryPayload
	calls    int
}

func (s *timeoutSummarizer) Summarize(context.Context, string) (*entity.SummaryPayload, error) {
	s.calls++
	if s.calls <= s.timeouts {
		return nil, fmt.Errorf("claude api error: %w", context.DeadlineExceeded)
	}
	return s.payload, nil
}

func TestEnrichAllRetriesPerCallTimeout(t *testing.T) {
	summarizer := &timeoutSummarizer{
		timeouts: 2,
		payload:  &entity.SummaryPayload{Overview: "recovered", Highlights: []string{}},
	}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	summaries := o.EnrichAll(context.Background(),
		groupsOf("Tech", entity.Item{Title: "a"}), nil)

	if summarizer.calls != 3 {
		t.Errorf("calls = %d, want 3 (per-call timeouts are transient)", summarizer.calls)
	}
	if summaries[0].Overview != "recovered" {
		t.Errorf("overview = %q, want the successful result", summaries[0].Overview)
	}
}

func TestEnrichAllExhaustedEmitsPlaceholderWithItems(t *testing.T) {
	summarizer := &scriptedSummarizer{failures: 99}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	items := []entity.Item{{Title: "kept-1"}, {Title: "kept-2"}}
	summaries := o.EnrichAll(context.Background(), groupsOf("Tech", items...), nil)

	if summarizer.calls != 3 {
		t.Errorf("calls = %d, want exactly 3 attempts", summarizer.calls)
	}
	got := summaries[0]
	if got.Overview != enrich.PlaceholderFailed {
		t.Errorf("overview = %q, want %q", got.Overview, enrich.PlaceholderFailed)
	}
	if len(got.Highlights) != 0 {
		t.Errorf("highlights = %v, want empty", got.Highlights)
	}
	if len(got.Items) != 2 || got.Items[0].Title != "kept-1" {
		t.Errorf("items = %v, want the original item list attached", got.Items)
	}
}

func TestEnrichAllEmptyCategorySkipsExternalCall(t *testing.T) {
	summarizer := &scriptedSummarizer{}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	groups := &entity.CategoryGroups{
		Labels: []string{"Empty"},
		Items:  map[string][]entity.Item{"Empty": {}},
	}
	summaries := o.EnrichAll(context.Background(), groups, nil)

	if summarizer.calls != 0 {
		t.Errorf("calls = %d, want 0 (empty categories short-circuit)", summarizer.calls)
	}
	if summaries[0].Overview != enrich.PlaceholderEmpty {
		t.Errorf("overview = %q, want %q", summaries[0].Overview, enrich.PlaceholderEmpty)
	}
}

func TestEnrichAllPartialDegradation(t *testing.T) {
	tests := []struct {
		name           string
		payload        *entity.SummaryPayload
		wantOverview   string
		wantHighlights int
	}{
		{
			name:           "missing overview keeps highlights",
			payload:        &entity.SummaryPayload{Highlights: []string{"h1", "h2"}},
			wantOverview:   enrich.PlaceholderFailed,
			wantHighlights: 2,
		},
		{
			name:           "missing highlights keeps overview",
			payload:        &entity.SummaryPayload{Overview: "fine"},
			wantOverview:   "fine",
			wantHighlights: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summarizer := &scriptedSummarizer{payload: tt.payload}
			o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

			summaries := o.EnrichAll(context.Background(),
				groupsOf("Tech", entity.Item{Title: "a"}), nil)

			got := summaries[0]
			if got.Overview != tt.wantOverview {
				t.Errorf("overview = %q, want %q", got.Overview, tt.wantOverview)
			}
			if got.Highlights == nil {
				t.Error("highlights must never be nil")
			}
			if len(got.Highlights) != tt.wantHighlights {
				t.Errorf("highlights = %d, want %d", len(got.Highlights), tt.wantHighlights)
			}
		})
	}
}

func TestEnrichAllProgressIsTotallyOrdered(t *testing.T) {
	summarizer := &scriptedSummarizer{payload: &entity.SummaryPayload{Overview: "o"}}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	groups := &entity.CategoryGroups{}
	groups.Add("B", entity.Item{Title: "b"})
	groups.Add("A", entity.Item{Title: "a"})
	groups.Add("C", entity.Item{Title: "c"})

	var order []string
	var counts []int
	o.EnrichAll(context.Background(), groups, func(completed, total int, category string) {
		order = append(order, category)
		counts = append(counts, completed)
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	wantOrder := []string{"B", "A", "C"}
	for i, want := range wantOrder {
		if order[i] != want {
			t.Errorf("progress order[%d] = %q, want %q (first-seen order)", i, order[i], want)
		}
		if counts[i] != i+1 {
			t.Errorf("completed[%d] = %d, want %d", i, counts[i], i+1)
		}
	}
}

func TestEnrichAllTruncatesPromptToItemCap(t *testing.T) {
	summarizer := &scriptedSummarizer{payload: &entity.SummaryPayload{Overview: "o"}}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	items := make([]entity.Item, 60)
	for i := range items {
		items[i] = entity.Item{Title: fmt.Sprintf("story-%d", i)}
	}
	summaries := o.EnrichAll(context.Background(), groupsOf("Tech", items...), nil)

	if len(summaries[0].Items) != 60 {
		t.Errorf("summary items = %d, want the full untruncated list", len(summaries[0].Items))
	}
	prompt := summarizer.prompts[0]
	if n := strings.Count(prompt, "story-"); n != 50 {
		t.Errorf("prompt contains %d items, want 50", n)
	}
	if !strings.Contains(prompt, "summarizing a digest of 50 articles") {
		t.Errorf("prompt header does not reflect the capped count:\n%s", prompt)
	}
}

func TestEnrichAllEveryCategoryYieldsExactlyOneSummary(t *testing.T) {
	summarizer := &scriptedSummarizer{failures: 99}
	o := enrich.NewOrchestrator(summarizer, zeroDelayConfig(nil))

	groups := &entity.CategoryGroups{}
	groups.Add("Tech", entity.Item{Title: "t"})
	groups.Labels = append(groups.Labels, "Empty")
	groups.Items["Empty"] = nil

	summaries := o.EnrichAll(context.Background(), groups, nil)

	if len(summaries) != groups.Len() {
		t.Fatalf("summaries = %d, want %d (one per category, none dropped)", len(summaries), groups.Len())
	}
}
