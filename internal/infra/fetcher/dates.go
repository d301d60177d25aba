package fetcher

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// resolvePublished resolves an entry's publication timestamp by trying
// an ordered list of alternative date fields; the first parseable value
// wins. Entries with no usable date resolve to nil rather than failing
// the item.
func resolvePublished(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return it.UpdatedParsed
	}

	candidates := []string{it.Published, it.Updated}
	if it.DublinCoreExt != nil {
		candidates = append(candidates, it.DublinCoreExt.Date...)
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return &t
		}
	}

	return nil
}
