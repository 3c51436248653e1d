package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Feed is one registered feed endpoint. Unique on URL; ArticleCount
// approximates cumulative ingested volume (bumped once per fetched item).
type Feed struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128" json:"name"`
	URL          string    `gorm:"size:512;uniqueIndex" json:"url"`
	AddedAt      time.Time `json:"addedAt"`
	LastFetched  time.Time `json:"lastFetched"`
	ArticleCount int64     `json:"articleCount"`
}

// Article is one historical fetch of a canonical item. The composite
// (id, fetched_at) key keeps one row per fetch; the unique URL index
// additionally collapses re-fetches of the same link, so both
// constraints back the insert-if-new contract. The URL index is
// partial: link-less items carry an empty url and must not block each
// other, they dedupe on the title-derived id alone.
type Article struct {
	ID             string            `gorm:"primaryKey;size:40" json:"id"`
	FetchedAt      time.Time         `gorm:"primaryKey" json:"fetchedAt"`
	Title          string            `gorm:"size:512" json:"title"`
	URL            string            `gorm:"size:1024;uniqueIndex:idx_articles_url,where:url <> ''" json:"url"`
	Summary        string            `gorm:"size:600" json:"summary"`
	Content        string            `gorm:"type:text" json:"content"`
	Published      string            `gorm:"size:64" json:"published"`
	Source         string            `gorm:"size:128;index" json:"source"`
	Sentiment      string            `gorm:"size:16;default:neutral" json:"sentiment"`
	RelevanceScore float64           `json:"relevanceScore"`
	Extra          datatypes.JSONMap `gorm:"type:jsonb" json:"extra"`
}

// Account is one monitored posting account, unique on handle.
type Account struct {
	Handle      string    `gorm:"primaryKey;size:64" json:"handle"`
	DisplayName string    `gorm:"size:128" json:"displayName"`
	LastChecked time.Time `json:"lastChecked"`
	PostCount   int64     `json:"postCount"`
}

// Post is one historical fetch of a social post. Unlike articles there
// is no unique URL constraint: repeated fetches of the same post are
// the whole point, they carry the engagement numbers over time.
type Post struct {
	ID             string    `gorm:"primaryKey;size:40" json:"id"`
	FetchedAt      time.Time `gorm:"primaryKey" json:"fetchedAt"`
	URL            string    `gorm:"size:512;index" json:"url"`
	Handle         string    `gorm:"size:64;index" json:"handle"`
	Author         string    `gorm:"size:128" json:"author"`
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      string    `gorm:"size:64" json:"createdAt"`
	Likes          int64     `json:"likes"`
	Retweets       int64     `json:"retweets"`
	Views          int64     `json:"views"`
	Sentiment      string    `gorm:"size:16;default:neutral" json:"sentiment"`
	RelevanceScore float64   `json:"relevanceScore"`
}

// MonitoredURL is one post URL on the monitoring list.
type MonitoredURL struct {
	URL     string    `gorm:"primaryKey;size:512" json:"url"`
	AddedAt time.Time `json:"addedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Feed{}, &Article{}, &Account{}, &Post{}, &MonitoredURL{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// Ping reports whether the durable store is reachable. A refresh cycle
// aborts up front when it is not, instead of failing item by item.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

const queryCacheTTL = 5 * time.Minute

// cacheGet loads a cached query result. Any Redis failure is a miss.
func (s *Store) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.Redis == nil {
		return false
	}
	bs, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, dest) == nil
}

// cacheSet stores a query result best-effort.
func (s *Store) cacheSet(ctx context.Context, key string, v any) {
	if s.Redis == nil {
		return
	}
	if bs, err := json.Marshal(v); err == nil {
		_ = s.Redis.Set(ctx, key, bs, queryCacheTTL).Err()
	}
}
