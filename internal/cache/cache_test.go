package cache

import (
	"testing"
	"time"

	"github.com/feedpulse/feedpulse/internal/processor"
)

func TestAddLastWriteWins(t *testing.T) {
	c := New()

	c.Add(processor.Article{ID: "a", Title: "first"})
	c.Add(processor.Article{ID: "a", Title: "second"})
	c.Add(processor.Article{ID: "b", Title: "other"})

	if c.Len() != 2 {
		t.Fatalf("expected 2 cached articles, got %d", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got.Title != "second" {
		t.Fatalf("latest write should win for id a: %+v", got)
	}
}

func TestDeduplicateByNormalizedTitle(t *testing.T) {
	c := New()

	c.Add(processor.Article{ID: "a", Title: "AI Breakthrough  "})
	c.Add(processor.Article{ID: "b", Title: "ai breakthrough"})
	c.Add(processor.Article{ID: "c", Title: "something else"})

	unique := c.Deduplicate()
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique titles, got %d", len(unique))
	}

	// Exactly one of the duplicate pair survives; which one is
	// iteration-order dependent and deliberately unasserted.
	count := 0
	for _, a := range unique {
		if a.ID == "a" || a.ID == "b" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one of the duplicate pair, got %d", count)
	}
}

func TestRecentWindow(t *testing.T) {
	c := New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Add(processor.Article{ID: "fresh", Published: now.Add(-30 * time.Minute).Format("2006-01-02T15:04:05")})
	c.Add(processor.Article{ID: "stale", Published: now.Add(-3 * time.Hour).Format("2006-01-02T15:04:05")})

	got := c.Recent(1, now)
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("expected only the fresh article, got %+v", got)
	}

	// Once time advances past published+1h the same article drops out.
	later := now.Add(2 * time.Hour)
	if got := c.Recent(1, later); len(got) != 0 {
		t.Fatalf("expected no articles after the window passed, got %+v", got)
	}
}

func TestRecentParsesRFC1123Z(t *testing.T) {
	c := New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Add(processor.Article{ID: "a", Published: now.Add(-10 * time.Minute).Format(time.RFC1123Z)})

	if got := c.Recent(1, now); len(got) != 1 {
		t.Fatalf("RFC1123Z published should be inside the window, got %+v", got)
	}
}

func TestRecentFailOpenOnUnparseable(t *testing.T) {
	c := New()
	now := time.Now()

	c.Add(processor.Article{ID: "weird", Published: "three moons ago"})

	got := c.Recent(1, now)
	if len(got) != 1 || got[0].ID != "weird" {
		t.Fatalf("unparseable published should be included fail-open, got %+v", got)
	}
}
