// Package pipeline wires catalog, fetchers, processor, cache and store
// into the refresh entry point. All state is carried explicitly; there
// is no package-level cache or config.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feedpulse/feedpulse/internal/cache"
	"github.com/feedpulse/feedpulse/internal/catalog"
	"github.com/feedpulse/feedpulse/internal/collector"
	"github.com/feedpulse/feedpulse/internal/processor"
	"github.com/feedpulse/feedpulse/internal/storage"
)

type Pipeline struct {
	OPMLPath    string
	MonitorURLs []string
	Interests   []string

	RSS   *collector.RSSFetcher
	Posts *collector.PostFetcher

	Processor *processor.Processor
	Cache     *cache.Cache
	Store     *storage.Store

	// refreshMu serializes whole cycles; cron skips overlapping
	// triggers, this guards the manual entry points.
	refreshMu sync.Mutex
}

func New(opmlPath string, monitorURLs, interests []string, postAPIBase string, store *storage.Store) *Pipeline {
	return &Pipeline{
		OPMLPath:    opmlPath,
		MonitorURLs: monitorURLs,
		Interests:   interests,
		RSS:         collector.NewRSSFetcher(),
		Posts:       collector.NewPostFetcher(postAPIBase),
		Processor:   processor.New(interests),
		Cache:       cache.New(),
		Store:       store,
	}
}

// Refresh runs one full collection cycle: every catalog feed, then
// every monitored post URL. Individual source failures are logged and
// skipped; only an unreachable store fails the whole cycle.
func (p *Pipeline) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if err := p.Store.Ping(ctx); err != nil {
		return fmt.Errorf("pipeline: store unavailable: %w", err)
	}

	sources := catalog.Load(p.OPMLPath)

	var wg sync.WaitGroup
	for _, src := range sources {
		source := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.refreshFeed(source)
		}()
	}
	wg.Wait()

	// Monitored posts are few; fetch them in order. URLs tracked in
	// earlier runs survive restarts, so merge the stored list in.
	urls := append([]string(nil), p.MonitorURLs...)
	if stored, err := p.Store.ListMonitoredURLs(); err != nil {
		log.Printf("list monitored urls error: %v", err)
	} else {
		known := make(map[string]struct{}, len(urls))
		for _, u := range urls {
			known[u] = struct{}{}
		}
		for _, m := range stored {
			if _, ok := known[m.URL]; !ok {
				urls = append(urls, m.URL)
			}
		}
	}
	for _, u := range urls {
		p.refreshPost(u)
	}

	log.Printf("refresh done: %d feeds, %d monitored posts, %d cached articles",
		len(sources), len(urls), p.Cache.Len())
	return nil
}

func (p *Pipeline) refreshFeed(src catalog.Source) {
	feedID, err := p.Store.RegisterFeed(src.Name, src.URL)
	if err != nil {
		log.Printf("register feed %s error: %v", src.URL, err)
		return
	}

	entries, err := p.RSS.Fetch(src.URL)
	if err != nil {
		log.Printf("fetch %s error: %v", src.Name, err)
		return
	}
	if len(entries) == 0 {
		log.Printf("fetch %s got 0 entries", src.Name)
		return
	}

	articles := p.Processor.ProcessEntries(entries, time.Now())
	stored := p.storeArticles(p.Store, feedID, src, articles)

	log.Printf("%s done, fetched=%d new=%d", src.Name, len(entries), stored)
}

// articleSink is the slice of storage the feed path writes through.
type articleSink interface {
	InsertArticles(articles []processor.Article) (int, error)
	RecordFetch(feedID uint) error
}

// storeArticles caches every processed article, records the fetch once
// per item so feed counters track ingested volume rather than distinct
// items, then persists the batch. Returns how many rows were new.
func (p *Pipeline) storeArticles(sink articleSink, feedID uint, src catalog.Source, articles []processor.Article) int {
	for _, a := range articles {
		p.Cache.Add(a)
		if err := sink.RecordFetch(feedID); err != nil {
			log.Printf("record fetch %s error: %v", src.URL, err)
		}
	}

	stored, err := sink.InsertArticles(articles)
	if err != nil {
		log.Printf("store articles %s error: %v", src.Name, err)
	}
	return stored
}

func (p *Pipeline) refreshPost(url string) {
	raw, err := p.Posts.Fetch(url)
	if err != nil {
		log.Printf("fetch post %s error: %v", url, err)
		return
	}

	post := p.Processor.ProcessPost(raw)

	isNew, err := p.Store.InsertPost(post)
	if err != nil {
		log.Printf("store post %s error: %v", post.ID, err)
		return
	}
	if err := p.Store.RegisterAccount(post.Handle, post.Author); err != nil {
		log.Printf("register account @%s error: %v", post.Handle, err)
	}
	if isNew {
		if err := p.Store.RecordPostFetch(post.Handle); err != nil {
			log.Printf("record post fetch @%s error: %v", post.Handle, err)
		}
	}
	if err := p.Store.TrackURL(url); err != nil {
		log.Printf("track url %s error: %v", url, err)
	}
}

// QueryResult is one item in the refresh-and-query response shape.
type QueryResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	Published string  `json:"published"`
	TLDR      string  `json:"tldr"`
	Sentiment string  `json:"sentiment"`
	Relevance float64 `json:"relevance"`
	URL       string  `json:"url"`
}

// Query answers over the in-memory working set: recency window, title
// dedup, optional interest substring filter, sorted by relevance.
func (p *Pipeline) Query(hours int, interestFilter string, maxResults int) []processor.Article {
	if hours <= 0 {
		hours = 24
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	// Recency narrows the set first, then title dedup collapses
	// cross-source duplicates of what is left. Deduping the full
	// cache instead could keep a stale duplicate and lose the fresh
	// one to the window.
	articles := cache.DedupeTitles(p.Cache.Recent(hours, time.Now()))

	if interestFilter != "" {
		needle := strings.ToLower(interestFilter)
		filtered := articles[:0]
		for _, a := range articles {
			if strings.Contains(strings.ToLower(a.Title+" "+a.Summary), needle) {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Relevance > articles[j].Relevance
	})

	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	return articles
}
