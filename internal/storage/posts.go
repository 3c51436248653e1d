package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feedpulse/feedpulse/internal/processor"
)

// RegisterAccount upserts a monitored account by handle.
func (s *Store) RegisterAccount(handle, displayName string) error {
	acc := &Account{
		Handle:      handle,
		DisplayName: displayName,
		LastChecked: time.Now(),
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "handle"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "last_checked"}),
	}).Create(acc).Error
}

// TrackURL adds a post URL to the monitoring list, ignoring repeats.
func (s *Store) TrackURL(url string) error {
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&MonitoredURL{URL: url, AddedAt: time.Now()}).Error
}

func (s *Store) ListMonitoredURLs() ([]MonitoredURL, error) {
	var urls []MonitoredURL
	err := s.DB.Order("added_at").Find(&urls).Error
	return urls, err
}

// RecordPostFetch advances the account's last-checked time and bumps
// its stored-post counter.
func (s *Store) RecordPostFetch(handle string) error {
	return s.DB.Model(&Account{}).Where("handle = ?", handle).Updates(map[string]any{
		"last_checked": time.Now(),
		"post_count":   gorm.Expr("post_count + 1"),
	}).Error
}

// InsertPost writes one history row, reporting whether it was new.
// Same-second re-inserts of the same post collapse on the composite
// primary key; distinct seconds intentionally keep both rows.
func (s *Store) InsertPost(p processor.Post) (bool, error) {
	row := &Post{
		ID:             p.ID,
		FetchedAt:      time.Now().UTC().Truncate(time.Second),
		URL:            p.URL,
		Handle:         p.Handle,
		Author:         toValidUTF8(p.Author),
		Content:        toValidUTF8(p.Content),
		CreatedAt:      p.CreatedAt,
		Likes:          p.Likes,
		Retweets:       p.Retweets,
		Views:          p.Views,
		Sentiment:      p.Sentiment,
		RelevanceScore: p.Relevance,
	}

	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("storage: insert post %s: %w", p.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// latestPostPerID collapses post history to the most recent fetch per id.
func (s *Store) latestPostPerID() *gorm.DB {
	return s.DB.Model(&Post{}).
		Select("DISTINCT ON (id) *").
		Order("id, fetched_at DESC")
}

// LatestPosts returns the most recently fetched distinct posts.
func (s *Store) LatestPosts(limit int) ([]Post, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var list []Post
	err := s.DB.Table("(?) AS latest", s.latestPostPerID()).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// PostsByHandle returns distinct posts from one handle, newest first.
func (s *Store) PostsByHandle(handle string, limit int) ([]Post, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	var list []Post
	err := s.DB.Table("(?) AS latest", s.latestPostPerID()).
		Where("handle = ?", handle).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// PostHistory returns every stored fetch of one post, newest first.
// This is the raw material for engagement-over-time analysis.
func (s *Store) PostHistory(id string) ([]Post, error) {
	var list []Post
	err := s.DB.Where("id = ?", id).Order("fetched_at DESC").Find(&list).Error
	return list, err
}

// EngagementTrend aggregates one handle's averages over a window.
type EngagementTrend struct {
	Handle      string  `json:"handle"`
	AvgLikes    float64 `json:"avgLikes"`
	AvgRetweets float64 `json:"avgRetweets"`
	AvgViews    float64 `json:"avgViews"`
	PostCount   int64   `json:"postCount"`
}

// EngagementTrends averages likes/retweets/views per handle over the
// last `days` days, optionally filtered to one handle. Cached in Redis
// for a few minutes.
func (s *Store) EngagementTrends(handle string, days int) ([]EngagementTrend, error) {
	if days <= 0 {
		days = 7
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("posts:trends:%s:%d", handle, days)
	var cached []EngagementTrend
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	q := s.DB.Model(&Post{}).
		Select("handle, AVG(likes) as avg_likes, AVG(retweets) as avg_retweets, AVG(views) as avg_views, COUNT(DISTINCT id) as post_count").
		Where("fetched_at >= ?", time.Now().AddDate(0, 0, -days)).
		Group("handle")
	if handle != "" {
		q = q.Where("handle = ?", handle)
	}

	var rows []EngagementTrend
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		s.cacheSet(ctx, cacheKey, rows)
	}
	return rows, nil
}
