// Package catalog resolves the set of named feed endpoints to monitor.
package catalog

import (
	"encoding/xml"
	"log"
	"os"
	"strings"
)

// Source is one named feed endpoint.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DefaultSources is used whenever the OPML file is missing or malformed,
// so a broken catalog never fails a collection cycle.
var DefaultSources = []Source{
	{Name: "Hacker News", URL: "https://hnrss.org/frontpage"},
	{Name: "Simon Willison", URL: "https://simonwillison.net/atom/everything/"},
	{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
	{Name: "MIT Tech Review", URL: "https://www.technologyreview.com/feed/"},
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

type opmlDoc struct {
	Outlines []opmlOutline `xml:"body>outline"`
}

// Load parses an OPML file into an ordered list of sources. Any read or
// parse failure falls back to DefaultSources with a logged warning.
func Load(path string) []Source {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("catalog: read %s: %v, using default feeds", path, err)
		return DefaultSources
	}

	sources, err := Parse(data)
	if err != nil {
		log.Printf("catalog: parse %s: %v, using default feeds", path, err)
		return DefaultSources
	}
	if len(sources) == 0 {
		log.Printf("catalog: %s contains no feeds, using default feeds", path)
		return DefaultSources
	}
	return sources
}

// Parse extracts (name, url) pairs from OPML bytes, walking nested
// outline folders in document order.
func Parse(data []byte) ([]Source, error) {
	var doc opmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var sources []Source
	var walk func(outlines []opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				name := strings.TrimSpace(o.Text)
				if name == "" {
					name = strings.TrimSpace(o.Title)
				}
				if name == "" {
					name = "Unknown"
				}
				sources = append(sources, Source{Name: name, URL: o.XMLURL})
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Outlines)

	return sources, nil
}
