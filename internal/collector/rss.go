package collector

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	rssClientTimeout    = 10 * time.Second
	rssMaxEntries       = 10
	rssMaxResponseBytes = 2 << 20 // 2MB
)

// RSSFetcher pulls entries from one RSS/Atom feed URL per call. At most
// rssMaxEntries entries are returned so a single huge feed cannot blow
// up a collection cycle.
type RSSFetcher struct {
	client *http.Client
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{
		client: &http.Client{Timeout: rssClientTimeout},
	}
}

func (f *RSSFetcher) Fetch(url string) ([]FeedEntry, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("rss: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rss: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, rssMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("rss: parse %s: %w", url, err)
	}

	items := feed.Items
	if len(items) > rssMaxEntries {
		items = items[:rssMaxEntries]
	}

	entries := make([]FeedEntry, 0, len(items))
	for _, it := range items {
		published := it.Published
		if published == "" {
			published = it.Updated
		}
		author := ""
		if it.Author != nil {
			author = it.Author.Name
		}

		entries = append(entries, FeedEntry{
			Title:      it.Title,
			Link:       it.Link,
			Summary:    it.Description,
			Content:    it.Content,
			Published:  published,
			Author:     author,
			Categories: it.Categories,
			FeedTitle:  feed.Title,
		})
	}

	return entries, nil
}
