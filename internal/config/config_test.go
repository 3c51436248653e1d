package config

import (
	"os"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// Unset -> default wins.
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// Set -> env wins.
	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestSplitListTrimsAndLowercases(t *testing.T) {
	got := splitList(" AI, Business ,, technology ")
	want := []string{"ai", "business", "technology"}
	if len(got) != len(want) {
		t.Fatalf("splitList returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if out := splitList(""); len(out) != 0 {
		t.Fatalf("splitList(\"\") should be empty, got %v", out)
	}
}

func TestLoadReadsInterestsAndMonitorURLs(t *testing.T) {
	_ = os.Setenv("INTERESTS", "golang,Cloud")
	_ = os.Setenv("MONITOR_URLS", "https://x.com/karpathy/status/1,https://x.com/simonw/status/2")
	defer func() {
		_ = os.Unsetenv("INTERESTS")
		_ = os.Unsetenv("MONITOR_URLS")
	}()

	cfg := Load()
	if len(cfg.Interests) != 2 || cfg.Interests[0] != "golang" || cfg.Interests[1] != "cloud" {
		t.Fatalf("Interests not loaded correctly: %v", cfg.Interests)
	}
	if len(cfg.MonitorURLs) != 2 {
		t.Fatalf("MonitorURLs not loaded correctly: %v", cfg.MonitorURLs)
	}
}
