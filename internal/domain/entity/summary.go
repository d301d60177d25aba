package entity

// CategoryGroups is a keyed grouping of items by category label.
// Labels holds the category labels in the order they were first seen
// during categorization; downstream stages iterate in that order so
// runs are reproducible.
type CategoryGroups struct {
	Labels []string
	Items  map[string][]Item
}

// Add appends an item to the given category, registering the label on
// first use.
func (g *CategoryGroups) Add(label string, item Item) {
	if g.Items == nil {
		g.Items = make(map[string][]Item)
	}
	if _, seen := g.Items[label]; !seen {
		g.Labels = append(g.Labels, label)
	}
	g.Items[label] = append(g.Items[label], item)
}

// Len returns the number of distinct categories.
func (g *CategoryGroups) Len() int {
	return len(g.Labels)
}

// SummaryPayload is the structured result of one summarization call.
type SummaryPayload struct {
	Overview   string   `json:"overview"`
	Highlights []string `json:"highlights"`
}

// CategorySummary is the enriched digest of one category. Exactly one
// is produced per category, including empty categories and categories
// whose summarization ultimately failed.
type CategorySummary struct {
	Category   string
	Overview   string
	Highlights []string
	Items      []Item
}
