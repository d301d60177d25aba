package entity

import (
	"errors"
	"fmt"
	"net/url"
)

// DefaultCategory is the category label assigned to sources and items
// that do not belong to any named group.
const DefaultCategory = "Uncategorized"

// Source represents one configured remote feed, as produced by the
// OPML subscription parser. The category label is inherited from the
// nearest enclosing named group in the subscription outline.
type Source struct {
	URL      string
	Name     string
	Category string
}

// Validate validates the Source fields.
// It checks that the feed URL is present and uses an HTTP(S) scheme.
func (s *Source) Validate() error {
	if s.URL == "" {
		return errors.New("source feed URL is required")
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", s.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported feed URL scheme %q (must be http or https)", u.Scheme)
	}

	return nil
}
