// Package output renders category summaries to files. Each writer takes
// the complete set of CategorySummary records for a run and materializes
// them under the output directory; writers never mutate their input.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/utils/text"
)

// rawDirName is the subdirectory under the output root that holds the
// per-category JSON documents.
const rawDirName = "raw"

// rawItem is the JSON shape of a single aggregated item.
type rawItem struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Source      string  `json:"source"`
	PublishedAt *string `json:"published_at"`
	Body        string  `json:"body,omitempty"`
}

// rawDocument is the JSON shape of one category file.
type rawDocument struct {
	Category    string    `json:"category"`
	GeneratedAt string    `json:"generated_at"`
	Overview    string    `json:"overview"`
	Highlights  []string  `json:"highlights"`
	Items       []rawItem `json:"items"`
}

// RawWriter writes one JSON document per category under <dir>/raw/.
type RawWriter struct {
	dir string
	now func() time.Time
}

// NewRawWriter creates a RawWriter rooted at dir.
func NewRawWriter(dir string) *RawWriter {
	return &RawWriter{dir: dir, now: time.Now}
}

// Write renders each summary to <dir>/raw/<slug>.json where slug is the
// lowercased category name with non-alphanumeric runs collapsed to
// hyphens. Timestamps are RFC 3339; items without a publication date
// serialize as null.
func (w *RawWriter) Write(summaries []entity.CategorySummary) error {
	rawDir := filepath.Join(w.dir, rawDirName)
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return fmt.Errorf("failed to create raw output directory: %w", err)
	}

	generatedAt := w.now().UTC().Format(time.RFC3339)
	for _, summary := range summaries {
		doc := rawDocument{
			Category:    summary.Category,
			GeneratedAt: generatedAt,
			Overview:    summary.Overview,
			Highlights:  summary.Highlights,
			Items:       make([]rawItem, 0, len(summary.Items)),
		}
		if doc.Highlights == nil {
			doc.Highlights = []string{}
		}
		for _, item := range summary.Items {
			doc.Items = append(doc.Items, rawItem{
				Title:       item.Title,
				Link:        item.Link,
				Source:      item.SourceTitle,
				PublishedAt: formatPublished(item.PublishedAt),
				Body:        item.Body,
			})
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode category %q: %w", summary.Category, err)
		}
		path := filepath.Join(rawDir, text.Slugify(summary.Category)+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func formatPublished(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
