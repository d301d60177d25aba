package output

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"feed-digest/internal/domain/entity"
)

// rssFileName is the fixed name of the rendered feed under the output
// directory.
const rssFileName = "digest.xml"

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate,omitempty"`
}

// RSSWriter renders the digest as a single RSS 2.0 feed. Each category
// summary becomes one channel item carrying the overview, followed by
// the aggregated articles of that category.
type RSSWriter struct {
	dir  string
	link string
	now  func() time.Time
}

// NewRSSWriter creates an RSSWriter rooted at dir. The link is used as
// the channel link and as the link of category-level items.
func NewRSSWriter(dir, link string) *RSSWriter {
	return &RSSWriter{dir: dir, link: link, now: time.Now}
}

// Write renders the summaries to <dir>/digest.xml.
func (w *RSSWriter) Write(summaries []entity.CategorySummary) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	generatedAt := w.now().UTC()
	channel := rssChannel{
		Title:         "Feed Digest",
		Link:          w.link,
		Description:   fmt.Sprintf("Aggregated digest of %d categories", len(summaries)),
		LastBuildDate: generatedAt.Format(time.RFC1123Z),
	}

	for _, summary := range summaries {
		channel.Items = append(channel.Items, rssItem{
			Title:       summary.Category,
			Link:        w.link,
			Description: summary.Overview,
			Category:    summary.Category,
			PubDate:     generatedAt.Format(time.RFC1123Z),
		})
		for _, item := range summary.Items {
			channel.Items = append(channel.Items, rssItem{
				Title:       item.Title,
				Link:        item.Link,
				Description: item.Body,
				Category:    summary.Category,
				PubDate:     formatPubDate(item.PublishedAt),
			})
		}
	}

	data, err := xml.MarshalIndent(rssDocument{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rss feed: %w", err)
	}

	path := filepath.Join(w.dir, rssFileName)
	content := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatPubDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}
