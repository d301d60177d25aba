package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feed-digest/internal/domain/entity"
)

// MarkdownWriter renders the full digest as a single markdown file named
// digest-YYYY-MM-DD.md under the output directory.
type MarkdownWriter struct {
	dir string
	now func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter rooted at dir.
func NewMarkdownWriter(dir string) *MarkdownWriter {
	return &MarkdownWriter{dir: dir, now: time.Now}
}

// Write renders every category in order: heading, overview, highlight
// bullets, then the item list with links and dates. Categories without
// highlights omit the bullet section.
func (w *MarkdownWriter) Write(summaries []entity.CategorySummary) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	generatedAt := w.now().UTC()
	var b strings.Builder
	fmt.Fprintf(&b, "# Feed Digest %s\n", generatedAt.Format("2006-01-02"))

	for _, summary := range summaries {
		fmt.Fprintf(&b, "\n## %s\n\n", summary.Category)
		fmt.Fprintf(&b, "%s\n", summary.Overview)

		if len(summary.Highlights) > 0 {
			b.WriteString("\n")
			for _, highlight := range summary.Highlights {
				fmt.Fprintf(&b, "- %s\n", highlight)
			}
		}

		if len(summary.Items) > 0 {
			b.WriteString("\n### Articles\n\n")
			for _, item := range summary.Items {
				fmt.Fprintf(&b, "- [%s](%s) (%s%s)\n",
					item.Title, item.Link, item.SourceTitle, formatItemDate(item.PublishedAt))
			}
		}
	}

	path := filepath.Join(w.dir, fmt.Sprintf("digest-%s.md", generatedAt.Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatItemDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ", " + t.UTC().Format("2006-01-02")
}
