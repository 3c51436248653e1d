package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/internal/catalog"
	"github.com/feedpulse/feedpulse/internal/pipeline"
	"github.com/feedpulse/feedpulse/internal/report"
	"github.com/feedpulse/feedpulse/internal/storage"
)

type Server struct {
	store     *storage.Store
	pipeline  *pipeline.Pipeline
	opmlPath  string
	interests []string
}

func NewServer(store *storage.Store, p *pipeline.Pipeline, opmlPath string, interests []string) *Server {
	return &Server{
		store:     store,
		pipeline:  p,
		opmlPath:  opmlPath,
		interests: interests,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.Use(cors.Default())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sources", s.listSources)
		v1.POST("/refresh", s.refreshAndQuery)
		v1.GET("/search", s.search)
		v1.GET("/items", s.listItems)
		v1.GET("/items/:id", s.getItem)
		v1.GET("/report", s.articleReport)
		v1.GET("/posts", s.listPosts)
		v1.GET("/posts/report", s.postReport)
		v1.GET("/posts/:id/history", s.postHistory)
		v1.GET("/trends", s.engagementTrends)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listSources returns the catalog, each entry annotated with its
// stored fetch stats when the feed has been registered.
func (s *Server) listSources(c *gin.Context) {
	sources := catalog.Load(s.opmlPath)

	stats := make(map[string]storage.Feed)
	if feeds, err := s.store.ListFeeds(); err != nil {
		log.Printf("api: list feeds: %v", err)
	} else {
		for _, f := range feeds {
			stats[f.URL] = f
		}
	}

	type sourceInfo struct {
		Name         string    `json:"name"`
		URL          string    `json:"url"`
		LastFetched  time.Time `json:"lastFetched"`
		ArticleCount int64     `json:"articleCount"`
	}
	feeds := make([]sourceInfo, 0, len(sources))
	for _, src := range sources {
		info := sourceInfo{Name: src.Name, URL: src.URL}
		if f, ok := stats[src.URL]; ok {
			info.LastFetched = f.LastFetched
			info.ArticleCount = f.ArticleCount
		}
		feeds = append(feeds, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds":     feeds,
		"interests": s.interests,
	})
}

// listItems serves stored articles, optionally restricted to one
// source or a fetch-time window.
func (s *Server) listItems(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	source := c.Query("source")

	var (
		articles []storage.Article
		err      error
	)
	if source != "" {
		articles, err = s.store.ArticlesBySource(source, limit)
	} else {
		articles, err = s.store.RecentArticles(limit, intQuery(c, "hours", 0))
	}
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(articles),
		"items": articles,
	})
}

// refreshAndQuery runs one collection cycle and answers over the
// refreshed working set.
func (s *Server) refreshAndQuery(c *gin.Context) {
	hours := intQuery(c, "hours", 24)
	maxResults := intQuery(c, "max_results", 10)
	interestFilter := c.Query("interest_filter")

	if err := s.pipeline.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "store_unavailable",
			"message": err.Error(),
		})
		return
	}

	articles := s.pipeline.Query(hours, interestFilter, maxResults)

	results := make([]pipeline.QueryResult, 0, len(articles))
	for _, a := range articles {
		results = append(results, pipeline.QueryResult{
			ID:        a.ID,
			Title:     a.Title,
			Source:    a.Source,
			Published: a.Published,
			TLDR:      report.TLDR(a.Summary),
			Sentiment: a.Sentiment,
			Relevance: a.Relevance,
			URL:       a.Link,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(results),
		"articles": results,
	})
}

func (s *Server) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "missing_query",
			"message": "query parameter q is required",
		})
		return
	}
	limit := intQuery(c, "limit", 5)

	articles, err := s.store.SearchArticles(query, limit)
	if err != nil {
		internalError(c, err)
		return
	}

	type searchResult struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Source string `json:"source"`
		TLDR   string `json:"tldr"`
		URL    string `json:"url"`
	}
	results := make([]searchResult, 0, len(articles))
	for _, a := range articles {
		results = append(results, searchResult{
			ID:     a.ID,
			Title:  a.Title,
			Source: a.Source,
			TLDR:   report.TLDR(a.Summary),
			URL:    a.URL,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) getItem(c *gin.Context) {
	id := c.Param("id")

	a, err := s.store.ArticleByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "item not found",
		})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (s *Server) articleReport(c *gin.Context) {
	days := intQuery(c, "days", 7)
	hours := days * 24

	articles, err := s.store.RecentArticles(50, hours)
	if err != nil {
		internalError(c, err)
		return
	}
	sources, err := s.store.TopSources(hours, 10)
	if err != nil {
		internalError(c, err)
		return
	}
	sentiment, err := s.store.SentimentBreakdown(hours)
	if err != nil {
		internalError(c, err)
		return
	}
	texts, err := s.store.ArticleTexts(hours)
	if err != nil {
		internalError(c, err)
		return
	}
	trending := report.TrendingKeywords(texts, 10)

	c.String(http.StatusOK, report.ArticleReport(days, articles, sources, sentiment, trending))
}

func (s *Server) listPosts(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	handle := c.Query("handle")

	var (
		posts []storage.Post
		err   error
	)
	if handle != "" {
		posts, err = s.store.PostsByHandle(handle, limit)
	} else {
		posts, err = s.store.LatestPosts(limit)
	}
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

// postHistory returns every stored fetch of one post, newest first,
// the raw series behind engagement-over-time analysis.
func (s *Server) postHistory(c *gin.Context) {
	id := c.Param("id")

	history, err := s.store.PostHistory(id)
	if err != nil {
		internalError(c, err)
		return
	}
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "post not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"count":   len(history),
		"history": history,
	})
}

func (s *Server) postReport(c *gin.Context) {
	days := intQuery(c, "days", 7)

	trends, err := s.store.EngagementTrends("", days)
	if err != nil {
		internalError(c, err)
		return
	}
	latest, err := s.store.LatestPosts(20)
	if err != nil {
		internalError(c, err)
		return
	}

	c.String(http.StatusOK, report.PostReport(days, trends, latest))
}

func (s *Server) engagementTrends(c *gin.Context) {
	days := intQuery(c, "days", 7)
	handle := c.Query("handle")

	trends, err := s.store.EngagementTrends(handle, days)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":   days,
		"trends": report.RankAccounts(trends),
	})
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func internalError(c *gin.Context, err error) {
	log.Printf("api: %s: %v", c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
