package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/feedpulse/feedpulse/internal/collector"
)

const (
	summaryMaxRunes = 200
	unknownSource   = "Unknown"
)

// Article is the canonical record produced from a raw feed entry.
type Article struct {
	ID        string
	Title     string
	Link      string
	Summary   string
	Content   string
	Published string
	Source    string
	Sentiment string
	Relevance float64
	// Raw carries source-specific leftovers (author, categories) that
	// do not fit the canonical columns.
	Raw map[string]any
}

// Post is the canonical record produced from a raw social post.
type Post struct {
	ID        string
	Author    string
	Handle    string
	Content   string
	CreatedAt string
	URL       string
	Likes     int64
	Retweets  int64
	Views     int64
	Sentiment string
	Relevance float64
}

// Processor normalizes raw payloads into canonical records and scores
// them against the configured interest keywords.
type Processor struct {
	interests []string
}

func New(interests []string) *Processor {
	return &Processor{interests: interests}
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// ProcessEntry maps one raw feed entry to an Article. The id is a
// content hash of the link (title when no link), so re-fetching the
// same entry always yields the same id.
func (p *Processor) ProcessEntry(e collector.FeedEntry, now time.Time) Article {
	id := hashID(e.Link)
	if e.Link == "" {
		id = hashID(e.Title)
	}

	summary := truncateRunes(tagPattern.ReplaceAllString(e.Summary, ""), summaryMaxRunes)

	published := e.Published
	if published == "" {
		published = now.Format(time.RFC3339)
	}

	source := e.FeedTitle
	if source == "" {
		source = unknownSource
	}

	raw := make(map[string]any)
	if e.Author != "" {
		raw["author"] = e.Author
	}
	if len(e.Categories) > 0 {
		raw["categories"] = e.Categories
	}

	return Article{
		ID:        id,
		Title:     strings.TrimSpace(e.Title),
		Link:      e.Link,
		Summary:   summary,
		Content:   e.Content,
		Published: published,
		Source:    source,
		Sentiment: Sentiment(e.Title, summary),
		Relevance: Relevance(e.Title, summary, p.interests),
		Raw:       raw,
	}
}

// ProcessEntries maps and scores a batch, dropping repeated ids within
// the batch (first occurrence wins).
func (p *Processor) ProcessEntries(entries []collector.FeedEntry, now time.Time) []Article {
	out := make([]Article, 0, len(entries))
	seen := make(map[string]struct{})

	for _, e := range entries {
		a := p.ProcessEntry(e, now)
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}

	return out
}

// ProcessPost maps one raw post to a canonical Post. The collector has
// already defaulted absent counters to zero.
func (p *Processor) ProcessPost(raw *collector.RawPost) Post {
	return Post{
		ID:        raw.ID,
		Author:    raw.Author,
		Handle:    raw.Handle,
		Content:   raw.Content,
		CreatedAt: raw.CreatedAt,
		URL:       raw.URL,
		Likes:     raw.Likes,
		Retweets:  raw.Retweets,
		Views:     raw.Views,
		Sentiment: Sentiment("", raw.Content),
		Relevance: Relevance("", raw.Content, p.interests),
	}
}

func hashID(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// truncateRunes cuts a string to limit runes so multi-byte text is
// never split mid-character.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
