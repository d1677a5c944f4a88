package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// marketHashtags is the allowlist that sets the has_market_hashtag flag.
var marketHashtags = map[string]bool{
	"nifty50":   true,
	"sensex":    true,
	"intraday":  true,
	"banknifty": true,
}

// largeNumberThreshold marks price-like mentions above it.
const largeNumberThreshold = 1000

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// CustomFeatures are structural and lexical counts extracted from one post.
// Flags are 0 or 1; everything else is a non-negative count.
type CustomFeatures struct {
	TextLength       int `json:"text_length"`
	WordCount        int `json:"word_count"`
	HashtagCount     int `json:"hashtag_count"`
	HasMarketHashtag int `json:"has_market_hashtag"`
	MentionCount     int `json:"mention_count"`
	NumberCount      int `json:"number_count"`
	HasLargeNumber   int `json:"has_large_number"`
	QuestionCount    int `json:"question_count"`
	ExclamationCount int `json:"exclamation_count"`
}

// ExtractCustomFeatures computes the custom feature set from post text,
// mention handles and hashtag strings.
func ExtractCustomFeatures(text string, mentions, hashtags []string) CustomFeatures {
	f := CustomFeatures{
		TextLength:       utf8.RuneCountInString(text),
		WordCount:        len(strings.Fields(text)),
		HashtagCount:     len(hashtags),
		MentionCount:     len(mentions),
		QuestionCount:    strings.Count(text, "?"),
		ExclamationCount: strings.Count(text, "!"),
	}

	for _, h := range hashtags {
		if marketHashtags[strings.ToLower(h)] {
			f.HasMarketHashtag = 1
			break
		}
	}

	numbers := numberPattern.FindAllString(text, -1)
	f.NumberCount = len(numbers)
	for _, n := range numbers {
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			continue
		}
		if v > largeNumberThreshold {
			f.HasLargeNumber = 1
			break
		}
	}

	return f
}
