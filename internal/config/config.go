package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// Interest keywords driving the relevance score, lower-cased.
	Interests []string

	// OPML file listing the feeds to monitor.
	OPMLPath string

	// Single-post lookup API base and the post URLs to monitor.
	PostAPIBase string
	MonitorURLs []string
}

const defaultInterests = "AI,business,technology,startups,engineering,security"

func Load() *Config {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=feedpulse password=feedpulse dbname=feedpulse port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		CronSpec:    getEnv("CRON_SPEC", "0 */2 * * *"),
		Interests:   splitList(getEnv("INTERESTS", defaultInterests)),
		OPMLPath:    getEnv("OPML_PATH", "feeds.opml"),
		PostAPIBase: getEnv("POST_API_BASE", "https://api.fxtwitter.com"),
		MonitorURLs: splitURLs(getEnv("MONITOR_URLS", "")),
	}

	log.Printf("config loaded: port=%s cron=%s interests=%d feeds=%s",
		cfg.AppPort, cfg.CronSpec, len(cfg.Interests), cfg.OPMLPath)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList parses a comma-separated env value, trimming and lower-casing each entry.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitURLs is splitList without the lower-casing; URL paths are case-sensitive.
func splitURLs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
