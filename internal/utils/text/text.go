// Package text provides utilities for text processing.
// This package includes reusable functions for HTML cleanup, truncation,
// and slug generation used across the fetch, enrichment, and output stages.
package text

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// It correctly handles multi-byte characters by counting runes instead of bytes.
func CountRunes(s string) int {
	return len([]rune(s))
}

// Truncate shortens s to at most limit runes, appending an ellipsis when
// anything was cut. A non-positive limit returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// CleanHTML strips markup from a feed entry body and collapses whitespace,
// producing plain text suitable for prompt construction. If the input does
// not parse as HTML it is returned with whitespace normalization only.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normalizeWhitespace(s)
	}

	doc.Find("script, style").Remove()
	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a category label into a filesystem-safe slug:
// lowercase, with runs of non-alphanumeric characters collapsed to a
// single hyphen. Labels that reduce to nothing produce "uncategorized".
func Slugify(label string) string {
	slug := strings.ToLower(label)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "uncategorized"
	}
	return slug
}
