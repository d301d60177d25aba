// Package categorize partitions aggregated items by category label and
// restores a defined order after the unordered fan-in merge.
package categorize

import (
	"sort"

	"feed-digest/internal/domain/entity"
)

// Categorize groups items by category label, substituting the default
// label when the field is empty, and sorts each group newest-first.
// Items without a timestamp sort after all dated items. The sort is
// stable: items that compare equal keep their relative input order.
// The function is pure; input items are not mutated.
func Categorize(items []entity.Item) *entity.CategoryGroups {
	groups := &entity.CategoryGroups{}

	for _, item := range items {
		label := item.Category
		if label == "" {
			label = entity.DefaultCategory
		}
		groups.Add(label, item)
	}

	for _, label := range groups.Labels {
		sortNewestFirst(groups.Items[label])
	}

	return groups
}

// sortNewestFirst orders a group descending by publication time, with
// undated items last. Stability is required by the output contract, so
// this must remain a stable sort.
func sortNewestFirst(items []entity.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
