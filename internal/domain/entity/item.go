package entity

import "time"

// Item represents a single article taken from a feed.
// A nil PublishedAt means the feed did not expose a parseable date.
// The pipeline owns items exclusively until categorization; content
// enhancement may replace Body during that phase. From categorization
// on, items are treated as immutable.
type Item struct {
	Title       string
	Link        string
	Body        string
	PublishedAt *time.Time
	SourceTitle string
	Category    string
}

// DateWindow is a publication-date filter applied at fetch time.
// A nil boundary means that side of the window is open.
type DateWindow struct {
	Since *time.Time
	Until *time.Time
}

// Contains reports whether an item published at t passes the window.
// Items with no timestamp always pass: the filter cannot exclude what
// it cannot compare.
func (w DateWindow) Contains(t *time.Time) bool {
	if t == nil {
		return true
	}
	if w.Since != nil && t.Before(*w.Since) {
		return false
	}
	if w.Until != nil && t.After(*w.Until) {
		return false
	}
	return true
}
