package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feedpulse/feedpulse/internal/processor"
)

// ErrNotFound is returned by single-row lookups with no matching row.
var ErrNotFound = errors.New("storage: not found")

// toValidUTF8 normalizes strings to legal UTF-8 so Postgres never sees
// an invalid byte sequence from a badly encoded feed.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB cuts a string to limit runes so it fits the column
// width even when an upstream bound was missed.
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// RegisterFeed adds a feed, returning the existing id when the URL is
// already registered.
func (s *Store) RegisterFeed(name, url string) (uint, error) {
	f := &Feed{}
	if err := s.DB.Where("url = ?", url).First(f).Error; err == nil {
		return f.ID, nil
	}

	f = &Feed{Name: name, URL: url, AddedAt: time.Now()}
	if err := s.DB.Create(f).Error; err != nil {
		// Concurrent registration of the same URL: read it back.
		if err2 := s.DB.Where("url = ?", url).First(f).Error; err2 == nil {
			return f.ID, nil
		}
		return 0, fmt.Errorf("storage: register feed %s: %w", url, err)
	}
	return f.ID, nil
}

func (s *Store) ListFeeds() ([]Feed, error) {
	var feeds []Feed
	if err := s.DB.Order("last_fetched DESC").Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}

// RecordFetch advances the feed's last-fetched time and bumps its item
// counter. Called once per fetched item, known or new, so the counter
// approximates cumulative ingested volume and last_fetched stays
// current on feeds that only re-serve known items.
func (s *Store) RecordFetch(feedID uint) error {
	return s.DB.Model(&Feed{}).Where("id = ?", feedID).Updates(map[string]any{
		"last_fetched":  time.Now(),
		"article_count": gorm.Expr("article_count + 1"),
	}).Error
}

// InsertArticle writes one history row, reporting whether it was new.
// "Not new" covers both a repeated (id, fetched_at) pair and a
// non-empty URL seen in any prior row; fetched_at has second
// granularity so the URL constraint is what catches same-second
// re-inserts of linked items.
func (s *Store) InsertArticle(a processor.Article) (bool, error) {
	row := &Article{
		ID:             a.ID,
		FetchedAt:      time.Now().UTC().Truncate(time.Second),
		Title:          toValidUTF8(a.Title),
		URL:            a.Link,
		Summary:        truncateRunesDB(toValidUTF8(a.Summary), 600),
		Content:        toValidUTF8(a.Content),
		Published:      a.Published,
		Source:         a.Source,
		Sentiment:      a.Sentiment,
		RelevanceScore: a.Relevance,
		Extra:          datatypes.JSONMap(a.Raw),
	}

	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("storage: insert article %s: %w", a.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// InsertArticles stores a batch best-effort and returns how many rows
// were actually new.
func (s *Store) InsertArticles(articles []processor.Article) (int, error) {
	newCount := 0
	var firstErr error
	for _, a := range articles {
		isNew, err := s.InsertArticle(a)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if isNew {
			newCount++
		}
	}
	return newCount, firstErr
}

// latestPerID collapses history rows to the most recent fetch per id.
func (s *Store) latestPerID(hours int) *gorm.DB {
	sub := s.DB.Model(&Article{}).
		Select("DISTINCT ON (id) *").
		Order("id, fetched_at DESC")
	if hours > 0 {
		sub = sub.Where("fetched_at >= ?", time.Now().Add(-time.Duration(hours)*time.Hour))
	}
	return sub
}

// RecentArticles returns the most relevant distinct items, optionally
// windowed by fetch time (hours <= 0 means no window). Results are
// served from Redis for a few minutes when possible.
func (s *Store) RecentArticles(limit, hours int) ([]Article, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("articles:recent:%d:%d", limit, hours)
	var cached []Article
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var list []Article
	err := s.DB.Table("(?) AS latest", s.latestPerID(hours)).
		Order("relevance_score DESC, published DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	if len(list) > 0 {
		s.cacheSet(ctx, cacheKey, list)
	}
	return list, nil
}

// ArticlesBySource returns distinct items from one source, newest first.
func (s *Store) ArticlesBySource(source string, limit int) ([]Article, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	var list []Article
	err := s.DB.Table("(?) AS latest", s.latestPerID(0)).
		Where("source = ?", source).
		Order("published DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// SearchArticles matches the query as a case-insensitive substring of
// title or summary, most relevant first.
func (s *Store) SearchArticles(query string, limit int) ([]Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	pattern := "%" + query + "%"

	var list []Article
	err := s.DB.Table("(?) AS latest", s.latestPerID(0)).
		Where("title ILIKE ? OR summary ILIKE ?", pattern, pattern).
		Order("relevance_score DESC, published DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ArticleByID returns the most recent history row for an id.
func (s *Store) ArticleByID(id string) (*Article, error) {
	var a Article
	err := s.DB.Where("id = ?", id).Order("fetched_at DESC").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SentimentBreakdown counts history rows per sentiment in the window.
func (s *Store) SentimentBreakdown(hours int) (map[string]int64, error) {
	var rows []struct {
		Sentiment string
		Count     int64
	}
	err := s.DB.Model(&Article{}).
		Select("sentiment, COUNT(*) as count").
		Where("fetched_at >= ?", time.Now().Add(-time.Duration(hours)*time.Hour)).
		Group("sentiment").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Sentiment] = r.Count
	}
	return out, nil
}

// SourceStat aggregates one source over a window.
type SourceStat struct {
	Source       string  `json:"source"`
	Count        int64   `json:"count"`
	AvgRelevance float64 `json:"avgRelevance"`
}

// TopSources ranks sources by item count within the window.
func (s *Store) TopSources(hours, limit int) ([]SourceStat, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []SourceStat
	err := s.DB.Model(&Article{}).
		Select("source, COUNT(*) as count, AVG(relevance_score) as avg_relevance").
		Where("fetched_at >= ?", time.Now().Add(-time.Duration(hours)*time.Hour)).
		Group("source").
		Order("count DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ArticleText is the keyword-extraction projection of a history row.
type ArticleText struct {
	Title   string
	Summary string
}

// ArticleTexts returns title/summary pairs for all rows in the window.
func (s *Store) ArticleTexts(hours int) ([]ArticleText, error) {
	var rows []ArticleText
	err := s.DB.Model(&Article{}).
		Select("title, summary").
		Where("fetched_at >= ?", time.Now().Add(-time.Duration(hours)*time.Hour)).
		Find(&rows).Error
	return rows, err
}
