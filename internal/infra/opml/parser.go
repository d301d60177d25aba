// Package opml parses OPML subscription lists into feed sources.
// Nested outlines are flattened; each feed inherits its category label
// from the nearest enclosing named outline.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"feed-digest/internal/domain/entity"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Body    body     `xml:"body"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	Type     string    `xml:"type,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Parse reads an OPML document and returns the flattened list of feed
// sources. Outlines without an xmlUrl attribute are treated as groups;
// feeds directly under the root get the default category label.
func Parse(r io.Reader) ([]entity.Source, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}

	var sources []entity.Source
	for _, o := range doc.Body.Outlines {
		sources = collect(sources, o, entity.DefaultCategory)
	}
	return sources, nil
}

// ParseFile reads and parses the OPML file at path.
func ParseFile(path string) ([]entity.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open opml file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sources, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sources, nil
}

// collect walks one outline, carrying the category label inherited from
// the nearest enclosing named group.
func collect(sources []entity.Source, o outline, category string) []entity.Source {
	if o.XMLURL != "" {
		name := displayName(o)
		if name == "" {
			name = o.XMLURL
		}
		sources = append(sources, entity.Source{
			URL:      o.XMLURL,
			Name:     name,
			Category: category,
		})
		return sources
	}

	// A group outline: its name becomes the category for everything below.
	childCategory := category
	if name := displayName(o); name != "" {
		childCategory = name
	}
	for _, child := range o.Outlines {
		sources = collect(sources, child, childCategory)
	}
	return sources
}

func displayName(o outline) string {
	if o.Title != "" {
		return o.Title
	}
	return o.Text
}
