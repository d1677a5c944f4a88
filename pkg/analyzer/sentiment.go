package analyzer

import "strings"

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// PositiveThreshold and NegativeThreshold bound the neutral band of the
// sentiment score.
const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// Market keyword lists for sentiment scoring. Matching is case-insensitive
// substring containment, so "bullish" inside a longer word still counts.
var (
	bullishKeywords = []string{
		"buy", "bull", "bullish", "up", "rise", "gain", "profit", "long",
		"rally", "surge", "breakout", "support", "strong", "positive",
	}
	bearishKeywords = []string{
		"sell", "bear", "bearish", "down", "fall", "loss", "short",
		"crash", "drop", "breakdown", "resistance", "weak", "negative",
	}
)

// SentimentScore computes a keyword-based sentiment score in [-1, 1] and its
// label. Text with no keywords from either list scores 0 and is neutral.
func SentimentScore(text string) (float64, string) {
	lower := strings.ToLower(text)

	bullish := 0
	for _, kw := range bullishKeywords {
		if strings.Contains(lower, kw) {
			bullish++
		}
	}
	bearish := 0
	for _, kw := range bearishKeywords {
		if strings.Contains(lower, kw) {
			bearish++
		}
	}

	total := bullish + bearish
	if total == 0 {
		return 0.0, LabelNeutral
	}

	score := float64(bullish-bearish) / float64(total)

	// The formula cannot leave [-1, 1], but the clamp guards the invariant
	// against future keyword weighting changes.
	score = max(-1.0, min(1.0, score))

	switch {
	case score > PositiveThreshold:
		return score, LabelPositive
	case score < NegativeThreshold:
		return score, LabelNegative
	default:
		return score, LabelNeutral
	}
}
