package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCustomFeaturesCounts(t *testing.T) {
	text := "Nifty at 19500.50 today! Target 20000? Big move!"
	f := ExtractCustomFeatures(text,
		[]string{"trader_x", "desk"},
		[]string{"Nifty50", "stocks"},
	)

	assert.Equal(t, len([]rune(text)), f.TextLength)
	assert.Equal(t, 8, f.WordCount)
	assert.Equal(t, 2, f.HashtagCount)
	assert.Equal(t, 1, f.HasMarketHashtag) // "Nifty50" matches case-insensitively
	assert.Equal(t, 2, f.MentionCount)
	assert.Equal(t, 2, f.NumberCount)
	assert.Equal(t, 1, f.HasLargeNumber)
	assert.Equal(t, 1, f.QuestionCount)
	assert.Equal(t, 2, f.ExclamationCount)
}

func TestExtractCustomFeaturesNoMarketHashtag(t *testing.T) {
	f := ExtractCustomFeatures("hello", nil, []string{"crypto", "gold"})
	assert.Equal(t, 0, f.HasMarketHashtag)
	assert.Equal(t, 2, f.HashtagCount)
}

func TestExtractCustomFeaturesSmallNumbersOnly(t *testing.T) {
	f := ExtractCustomFeatures("up 2.5 percent, 999 points", nil, nil)
	assert.Equal(t, 2, f.NumberCount)
	assert.Equal(t, 0, f.HasLargeNumber)
}

func TestExtractCustomFeaturesEmpty(t *testing.T) {
	f := ExtractCustomFeatures("", nil, nil)
	assert.Equal(t, CustomFeatures{}, f)
}

func TestExtractCustomFeaturesLargeNumberThresholdExclusive(t *testing.T) {
	f := ExtractCustomFeatures("exactly 1000", nil, nil)
	assert.Equal(t, 0, f.HasLargeNumber)

	f = ExtractCustomFeatures("just over 1000.01", nil, nil)
	assert.Equal(t, 1, f.HasLargeNumber)
}
