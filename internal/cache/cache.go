// Package cache holds the in-memory working set of articles for the
// current monitoring session: at most one article per id, latest wins.
// Durable history lives in storage; this cache only serves the
// read-your-refresh query path.
package cache

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/feedpulse/feedpulse/internal/processor"
)

// publishedFormats is the fixed priority order for parsing the
// free-form published timestamps that feeds report.
var publishedFormats = []string{
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type Cache struct {
	mu       sync.RWMutex
	articles map[string]processor.Article
}

func New() *Cache {
	return &Cache{articles: make(map[string]processor.Article)}
}

// Add stores an article keyed by id, overwriting any prior value.
func (c *Cache) Add(a processor.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles[a.ID] = a
}

func (c *Cache) Get(id string) (processor.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.articles[id]
	return a, ok
}

func (c *Cache) All() []processor.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]processor.Article, 0, len(c.articles))
	for _, a := range c.articles {
		out = append(out, a)
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.articles)
}

// Recent returns articles published within the last windowHours.
// Articles whose timestamp parses under none of the supported formats
// are included fail-open: losing an item to a weird date format is
// worse than showing a stale one.
func (c *Cache) Recent(windowHours int, now time.Time) []processor.Article {
	cutoff := now.Add(-time.Duration(windowHours) * time.Hour)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []processor.Article
	for _, a := range c.articles {
		published, ok := parsePublished(a.Published)
		if !ok {
			log.Printf("cache: unparseable published %q for %s, including anyway", a.Published, a.ID)
			out = append(out, a)
			continue
		}
		if published.After(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

// Deduplicate returns the current values with at most one article per
// normalized title.
func (c *Cache) Deduplicate() []processor.Article {
	return DedupeTitles(c.All())
}

// DedupeTitles keeps at most one article per normalized title
// (case-folded, trimmed), first occurrence wins. Callers that care
// which duplicate survives must order the input first.
func DedupeTitles(articles []processor.Article) []processor.Article {
	seen := make(map[string]struct{}, len(articles))
	var unique []processor.Article
	for _, a := range articles {
		norm := strings.ToLower(strings.TrimSpace(a.Title))
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

func parsePublished(s string) (time.Time, bool) {
	for _, format := range publishedFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
