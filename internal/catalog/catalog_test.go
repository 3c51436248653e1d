package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>feeds</title></head>
  <body>
    <outline text="Hacker News" xmlUrl="https://hnrss.org/frontpage"/>
    <outline text="Tech">
      <outline title="TechCrunch" xmlUrl="https://techcrunch.com/feed/"/>
    </outline>
    <outline text="No URL here"/>
  </body>
</opml>`

func TestParseWalksNestedOutlines(t *testing.T) {
	sources, err := Parse([]byte(sampleOPML))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d: %v", len(sources), sources)
	}
	if sources[0].Name != "Hacker News" || sources[0].URL != "https://hnrss.org/frontpage" {
		t.Fatalf("unexpected first source: %+v", sources[0])
	}
	// title attr is the fallback when text is absent
	if sources[1].Name != "TechCrunch" {
		t.Fatalf("expected title fallback, got %+v", sources[1])
	}
}

func TestParseMalformedXML(t *testing.T) {
	if _, err := Parse([]byte("<opml><body><outline")); err == nil {
		t.Fatal("expected error for malformed OPML")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	// Missing file
	sources := Load(filepath.Join(t.TempDir(), "missing.opml"))
	if len(sources) != len(DefaultSources) {
		t.Fatalf("expected default feeds for missing file, got %v", sources)
	}

	// Malformed file
	path := filepath.Join(t.TempDir(), "bad.opml")
	if err := os.WriteFile(path, []byte("not xml at all <"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	sources = Load(path)
	if len(sources) != len(DefaultSources) {
		t.Fatalf("expected default feeds for malformed file, got %v", sources)
	}

	// Valid file
	path = filepath.Join(t.TempDir(), "ok.opml")
	if err := os.WriteFile(path, []byte(sampleOPML), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	sources = Load(path)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources from valid file, got %v", sources)
	}
}
