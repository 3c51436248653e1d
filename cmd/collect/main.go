package main

import (
	"context"
	"fmt"
	"log"

	"github.com/feedpulse/feedpulse/internal/config"
	"github.com/feedpulse/feedpulse/internal/pipeline"
	"github.com/feedpulse/feedpulse/internal/report"
	"github.com/feedpulse/feedpulse/internal/storage"
)

// One-shot collection run: refresh every source once, then print the
// reports. Useful for manual triggering and cron-less setups.
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	p := pipeline.New(cfg.OPMLPath, cfg.MonitorURLs, cfg.Interests, cfg.PostAPIBase, store)

	if err := p.Refresh(context.Background()); err != nil {
		log.Fatalf("refresh failed: %v", err)
	}

	const days = 7
	hours := days * 24

	articles, err := store.RecentArticles(50, hours)
	if err != nil {
		log.Fatalf("query articles failed: %v", err)
	}
	sources, err := store.TopSources(hours, 10)
	if err != nil {
		log.Fatalf("query sources failed: %v", err)
	}
	sentiment, err := store.SentimentBreakdown(hours)
	if err != nil {
		log.Fatalf("query sentiment failed: %v", err)
	}
	texts, err := store.ArticleTexts(hours)
	if err != nil {
		log.Fatalf("query texts failed: %v", err)
	}

	fmt.Println(report.ArticleReport(days, articles, sources, sentiment, report.TrendingKeywords(texts, 10)))

	trends, err := store.EngagementTrends("", days)
	if err != nil {
		log.Fatalf("query trends failed: %v", err)
	}
	latest, err := store.LatestPosts(20)
	if err != nil {
		log.Fatalf("query posts failed: %v", err)
	}

	fmt.Println(report.PostReport(days, trends, latest))
}
