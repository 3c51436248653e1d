package processor

import "strings"

// Sentiment labels.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

var positiveWords = []string{"up", "growth", "success", "new", "launch", "release", "improve", "best", "win"}
var negativeWords = []string{"fail", "crash", "bug", "vulnerability", "hack", "down", "lose", "problem", "issue"}

// Relevance scores title+body against the interest keywords: one point
// per keyword present (case-insensitive substring), normalized by the
// interest count and capped at 1.0.
func Relevance(title, body string, interests []string) float64 {
	if len(interests) == 0 {
		return 0.0
	}

	text := strings.ToLower(title + " " + body)
	score := 0.0
	for _, interest := range interests {
		if strings.Contains(text, strings.ToLower(interest)) {
			score += 1.0
		}
	}

	score /= float64(len(interests))
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Sentiment compares how many fixed positive vs negative words appear
// in title+body. Ties are neutral.
func Sentiment(title, body string) string {
	text := strings.ToLower(title + " " + body)

	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			neg++
		}
	}

	switch {
	case pos > neg:
		return SentimentBullish
	case neg > pos:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}
