// Package report builds the read-side analytics: trending keywords,
// engagement rankings and the formatted text reports. Everything here
// is pure formatting and aggregation over storage query results.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feedpulse/feedpulse/internal/storage"
)

// stopwords excluded from trending keyword extraction.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "from": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {}, "new": {}, "how": {}, "what": {},
	"why": {}, "when": {}, "where": {}, "who": {}, "can": {}, "will": {}, "your": {}, "you": {}, "our": {},
}

const tokenEdgeCutset = ".,!?;:\"'()[]"

// Keyword is one trending token with its frequency.
type Keyword struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TrendingKeywords tokenizes title+summary pairs on whitespace, trims
// punctuation from token edges, drops short tokens and stopwords, and
// returns the top keywords by frequency. Ties break lexicographically
// so the result is deterministic regardless of row order.
func TrendingKeywords(texts []storage.ArticleText, limit int) []Keyword {
	if limit <= 0 {
		limit = 10
	}

	freq := make(map[string]int)
	for _, t := range texts {
		text := strings.ToLower(t.Title + " " + t.Summary)
		for _, w := range strings.Fields(text) {
			w = strings.Trim(w, tokenEdgeCutset)
			if len(w) <= 3 {
				continue
			}
			if _, skip := stopwords[w]; skip {
				continue
			}
			freq[w]++
		}
	}

	keywords := make([]Keyword, 0, len(freq))
	for w, c := range freq {
		keywords = append(keywords, Keyword{Keyword: w, Count: c})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

// sentimentOrder fixes the print order of the sentiment line.
var sentimentOrder = []string{"bullish", "bearish", "neutral"}

// ArticleReport assembles the feed intelligence report.
func ArticleReport(days int, articles []storage.Article, sources []storage.SourceStat, sentiment map[string]int64, trending []Keyword) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RSS Intelligence Report (Last %d days)\n", days)
	b.WriteString(strings.Repeat("=", 45) + "\n\n")

	fmt.Fprintf(&b, "Total Articles: %d\n", len(articles))
	b.WriteString("Sentiment:")
	for _, s := range sentimentOrder {
		if c, ok := sentiment[s]; ok {
			fmt.Fprintf(&b, " %s=%d", s, c)
		}
	}
	b.WriteString("\n\n")

	if len(sources) > 0 {
		b.WriteString("Top Sources:\n")
		top := sources
		if len(top) > 5 {
			top = top[:5]
		}
		for _, s := range top {
			fmt.Fprintf(&b, "  %s: %d articles (relevance: %.2f)\n", s.Source, s.Count, s.AvgRelevance)
		}
		b.WriteString("\n")
	}

	if len(trending) > 0 {
		b.WriteString("Trending Topics:\n  ")
		top := trending
		if len(top) > 8 {
			top = top[:8]
		}
		parts := make([]string, 0, len(top))
		for _, k := range top {
			parts = append(parts, fmt.Sprintf("%s (%d)", k.Keyword, k.Count))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n\n")
	}

	if len(articles) > 0 {
		b.WriteString("Top Articles by Relevance:\n")
		top := articles
		if len(top) > 10 {
			top = top[:10]
		}
		for _, a := range top {
			fmt.Fprintf(&b, "  [%s] %s\n", sentimentTag(a.Sentiment), truncateText(a.Title, 60))
			fmt.Fprintf(&b, "    Source: %s\n", a.Source)
		}
	}

	return b.String()
}

// RankAccounts orders trends by avg likes + 2*avg retweets, weighting
// shares more heavily than likes. Returns a sorted copy.
func RankAccounts(trends []storage.EngagementTrend) []storage.EngagementTrend {
	ranked := make([]storage.EngagementTrend, len(trends))
	copy(ranked, trends)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].AvgLikes+ranked[i].AvgRetweets*2 > ranked[j].AvgLikes+ranked[j].AvgRetweets*2
	})
	return ranked
}

// PostReport assembles the account monitoring report.
func PostReport(days int, trends []storage.EngagementTrend, latest []storage.Post) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Post Monitor Report (Last %d days)\n", days)
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	if len(trends) > 0 {
		b.WriteString("Top Accounts by Average Engagement:\n")
		ranked := RankAccounts(trends)
		if len(ranked) > 5 {
			ranked = ranked[:5]
		}
		for _, t := range ranked {
			fmt.Fprintf(&b, "  @%s: likes=%.0f retweets=%.0f views=%.0f\n", t.Handle, t.AvgLikes, t.AvgRetweets, t.AvgViews)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Recent Posts (%d):\n", len(latest))
	top := latest
	if len(top) > 10 {
		top = top[:10]
	}
	for _, p := range top {
		fmt.Fprintf(&b, "  @%s: %s\n", p.Handle, truncateText(p.Content, 80))
		fmt.Fprintf(&b, "    likes=%d retweets=%d views=%d\n", p.Likes, p.Retweets, p.Views)
	}

	return b.String()
}

// Summarize produces a numbered, token-efficient digest of posts.
func Summarize(posts []storage.Post) string {
	if len(posts) == 0 {
		return "No posts to summarize"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Post Monitor (%d posts):\n\n", len(posts))
	for i, p := range posts {
		fmt.Fprintf(&b, "%d. @%s: %s\n", i+1, p.Handle, truncateText(p.Content, 100))
		fmt.Fprintf(&b, "   likes=%d retweets=%d views=%d\n\n", p.Likes, p.Retweets, p.Views)
	}
	return b.String()
}

// TLDR derives a short excerpt from a summary: the first two sentences
// when available, otherwise a plain truncation.
func TLDR(summary string) string {
	sentences := strings.SplitN(summary, ". ", 3)
	if len(sentences) >= 2 {
		second := []rune(sentences[1])
		if len(second) > 100 {
			second = second[:100]
		}
		return sentences[0] + ". " + string(second) + "..."
	}
	if rs := []rune(summary); len(rs) > 150 {
		return string(rs[:150]) + "..."
	}
	return summary + "..."
}

// sentimentTag abbreviates a sentiment label for the report listing.
func sentimentTag(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// truncateText cuts display text at limit runes with an ellipsis.
func truncateText(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "..."
}
