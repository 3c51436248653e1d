package processor

import (
	"strings"
	"testing"
	"time"

	"github.com/feedpulse/feedpulse/internal/collector"
)

func TestHashIDDeterministicAndDistinct(t *testing.T) {
	h1a := hashID("https://example.com/a")
	h1b := hashID("https://example.com/a")
	h2 := hashID("https://example.com/b")

	if h1a != h1b {
		t.Fatalf("hashID not deterministic: %q vs %q", h1a, h1b)
	}
	if h1a == h2 {
		t.Fatalf("hashID should differ for different inputs: %q", h1a)
	}
}

func TestProcessEntryDefaultsAndStripping(t *testing.T) {
	p := New([]string{"ai"})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	a := p.ProcessEntry(collector.FeedEntry{
		Title:   "  Title with spaces  ",
		Link:    "https://example.com/x",
		Summary: "<p>Some <b>bold</b> text</p>" + strings.Repeat(" filler", 100),
	}, now)

	if a.Title != "Title with spaces" {
		t.Fatalf("title not trimmed: %q", a.Title)
	}
	if strings.Contains(a.Summary, "<") {
		t.Fatalf("summary should have tags stripped: %q", a.Summary)
	}
	if got := len([]rune(a.Summary)); got > summaryMaxRunes {
		t.Fatalf("summary too long: %d runes", got)
	}
	if a.Published != now.Format(time.RFC3339) {
		t.Fatalf("missing published should default to now, got %q", a.Published)
	}
	if a.Source != unknownSource {
		t.Fatalf("missing feed title should default to %q, got %q", unknownSource, a.Source)
	}
}

func TestProcessEntryIDFallsBackToTitle(t *testing.T) {
	p := New(nil)
	now := time.Now()

	withLink := p.ProcessEntry(collector.FeedEntry{Title: "t", Link: "https://example.com/x"}, now)
	noLink := p.ProcessEntry(collector.FeedEntry{Title: "t"}, now)

	if withLink.ID != hashID("https://example.com/x") {
		t.Fatalf("id should hash the link: %q", withLink.ID)
	}
	if noLink.ID != hashID("t") {
		t.Fatalf("id should hash the title when no link: %q", noLink.ID)
	}
}

func TestProcessEntriesDropsRepeatedIDs(t *testing.T) {
	p := New(nil)
	now := time.Now()

	out := p.ProcessEntries([]collector.FeedEntry{
		{Title: "first", Link: "https://example.com/same"},
		{Title: "second fetch of same link", Link: "https://example.com/same"},
		{Title: "other", Link: "https://example.com/other"},
	}, now)

	if len(out) != 2 {
		t.Fatalf("expected 2 articles after batch dedupe, got %d", len(out))
	}
	if out[0].Title != "first" {
		t.Fatalf("first occurrence should win: %q", out[0].Title)
	}
}

func TestProcessPostCopiesFieldsAndScores(t *testing.T) {
	p := New([]string{"model"})

	post := p.ProcessPost(&collector.RawPost{
		ID:      "42",
		Author:  "Andrej",
		Handle:  "karpathy",
		Content: "a new model launch, great success",
		URL:     "https://x.com/karpathy/status/42",
		Likes:   10,
	})

	if post.ID != "42" || post.Handle != "karpathy" || post.Likes != 10 {
		t.Fatalf("fields not copied: %+v", post)
	}
	if post.Relevance != 1.0 {
		t.Fatalf("relevance = %v, want 1.0", post.Relevance)
	}
	if post.Sentiment != SentimentBullish {
		t.Fatalf("sentiment = %q, want bullish", post.Sentiment)
	}
}
