package enrich

import (
	"fmt"
	"strings"

	"feed-digest/internal/domain/entity"
	"feed-digest/internal/utils/text"
)

// bodyCharLimit bounds each item's body inside the prompt so a single
// verbose article cannot dominate the request.
const bodyCharLimit = 500

// BuildPrompt constructs the summarization prompt for one category.
// It instructs the model to respond with a JSON object so the payload
// can be parsed mechanically.
func BuildPrompt(category string, items []entity.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are summarizing a digest of %d articles in the category %q.\n", len(items), category)
	b.WriteString("Respond with a single JSON object and nothing else, in this exact shape:\n")
	b.WriteString(`{"overview": "two or three sentences covering the main themes", "highlights": ["one line per notable article, at most five"]}`)
	b.WriteString("\n\nArticles:\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, item.Title)
		if item.SourceTitle != "" {
			fmt.Fprintf(&b, " (%s)", item.SourceTitle)
		}
		b.WriteString("\n")
		if body := text.CleanHTML(item.Body); body != "" {
			fmt.Fprintf(&b, "   %s\n", text.Truncate(body, bodyCharLimit))
		}
	}

	return b.String()
}
