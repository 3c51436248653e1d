package processor

import (
	"math"
	"testing"
)

func TestRelevanceFormula(t *testing.T) {
	interests := []string{"ai", "testing", "cloud", "rust"}

	// One of four interests matched.
	got := Relevance("AI breakthrough", "nothing else relevant", interests)
	if math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("Relevance = %v, want 0.25", got)
	}

	// Case-insensitive substring match.
	got = Relevance("TESTING in the CLOUD", "", interests)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Relevance = %v, want 0.5", got)
	}

	// No interests configured.
	if got := Relevance("anything", "at all", nil); got != 0.0 {
		t.Fatalf("Relevance with no interests = %v, want 0", got)
	}

	// Always within [0, 1].
	if got := Relevance("ai testing cloud rust", "ai testing cloud rust", interests); got != 1.0 {
		t.Fatalf("full match = %v, want 1.0", got)
	}
}

func TestRelevanceExampleScenario(t *testing.T) {
	got := Relevance("AI breakthrough announced", "A new AI model achieves success in testing", []string{"AI", "testing"})
	if got != 1.0 {
		t.Fatalf("Relevance = %v, want 1.0", got)
	}
}

func TestSentimentLabels(t *testing.T) {
	// Two positive words ("new", "success"), zero negative.
	if got := Sentiment("AI breakthrough announced", "A new AI model achieves success in testing"); got != SentimentBullish {
		t.Fatalf("Sentiment = %q, want bullish", got)
	}

	// Swapping positives for negatives flips the label.
	if got := Sentiment("AI regression reported", "the AI model had a crash and a fail in testing"); got != SentimentBearish {
		t.Fatalf("Sentiment = %q, want bearish", got)
	}

	// Balanced counts are neutral.
	if got := Sentiment("launch", "crash"); got != SentimentNeutral {
		t.Fatalf("Sentiment = %q, want neutral", got)
	}

	// No matches at all.
	if got := Sentiment("quarterly report", "numbers were flat"); got != SentimentNeutral {
		t.Fatalf("Sentiment = %q, want neutral", got)
	}
}
