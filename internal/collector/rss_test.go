package collector

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func rssBody(itemCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Test Feed</title>`)
	for i := 0; i < itemCount; i++ {
		fmt.Fprintf(&b, `<item>
			<title>Story %d</title>
			<link>https://example.com/story-%d</link>
			<description>&lt;p&gt;Summary %d&lt;/p&gt;</description>
			<pubDate>Mon, 02 Jan 2006 15:04:05 +0000</pubDate>
		</item>`, i, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestRSSFetcherMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody(2))
	}))
	defer srv.Close()

	entries, err := NewRSSFetcher().Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	e := entries[0]
	if e.Title != "Story 0" {
		t.Fatalf("Title = %q", e.Title)
	}
	if e.Link != "https://example.com/story-0" {
		t.Fatalf("Link = %q", e.Link)
	}
	if !strings.Contains(e.Summary, "Summary 0") {
		t.Fatalf("Summary = %q", e.Summary)
	}
	if e.Published == "" {
		t.Fatal("Published should carry the source string")
	}
	if e.FeedTitle != "Test Feed" {
		t.Fatalf("FeedTitle = %q", e.FeedTitle)
	}
}

func TestRSSFetcherCapsEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(25))
	}))
	defer srv.Close()

	entries, err := NewRSSFetcher().Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != rssMaxEntries {
		t.Fatalf("expected cap at %d entries, got %d", rssMaxEntries, len(entries))
	}
}

func TestRSSFetcherNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := NewRSSFetcher().Fetch(srv.URL); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestRSSFetcherMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer srv.Close()

	if _, err := NewRSSFetcher().Fetch(srv.URL); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
