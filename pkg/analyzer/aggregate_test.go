package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceIntervalKnownValues(t *testing.T) {
	signals := []float64{1.0, 2.0, 3.0}
	lower, upper := ConfidenceInterval(signals, 0.95)

	mean := 2.0
	std := math.Sqrt(2.0 / 3.0) // population std, denominator N
	z := 1.959964
	margin := z * std / math.Sqrt(3)

	assert.InDelta(t, mean-margin, lower, 1e-4)
	assert.InDelta(t, mean+margin, upper, 1e-4)
}

func TestConfidenceIntervalEmpty(t *testing.T) {
	lower, upper := ConfidenceInterval(nil, 0.95)
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 0.0, upper)
}

func TestConfidenceIntervalSinglePointCollapses(t *testing.T) {
	// Population std of one point is 0, so the interval is [mean, mean].
	lower, upper := ConfidenceInterval([]float64{0.42}, 0.95)
	assert.Equal(t, 0.42, lower)
	assert.Equal(t, 0.42, upper)
}

func TestConfidenceIntervalWidensWithLevel(t *testing.T) {
	signals := []float64{0.1, 0.5, 0.9, 0.3}
	l95, u95 := ConfidenceInterval(signals, 0.95)
	l99, u99 := ConfidenceInterval(signals, 0.99)
	assert.Less(t, l99, l95)
	assert.Greater(t, u99, u95)
}

func TestNormQuantile(t *testing.T) {
	assert.InDelta(t, 1.959964, normQuantile(0.975), 1e-5)
	assert.InDelta(t, 2.575829, normQuantile(0.995), 1e-5)
	assert.InDelta(t, 0.0, normQuantile(0.5), 1e-9)
	assert.InDelta(t, -1.644854, normQuantile(0.05), 1e-5)
}

func TestAggregateSignalsStatistics(t *testing.T) {
	results := []Result{
		{CompositeSignal: 1.0, SentimentScore: 1.0, SentimentLabel: LabelPositive, EngagementScore: 0.2},
		{CompositeSignal: 2.0, SentimentScore: -1.0, SentimentLabel: LabelNegative, EngagementScore: 0.4},
		{CompositeSignal: 3.0, SentimentScore: 0.0, SentimentLabel: LabelNeutral, EngagementScore: 0.6},
	}

	s := AggregateSignals(results, 0.95)

	assert.InDelta(t, 2.0, s.MeanSignal, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), s.StdSignal, 1e-12)
	assert.InDelta(t, 0.0, s.MeanSentiment, 1e-12)
	assert.InDelta(t, 0.4, s.MeanEngagement, 1e-12)
	assert.Equal(t, 3, s.TotalTweets)
	assert.Equal(t, map[string]int{
		LabelPositive: 1,
		LabelNegative: 1,
		LabelNeutral:  1,
	}, s.SentimentDistribution)
	assert.Less(t, s.ConfidenceIntervalLower, s.MeanSignal)
	assert.Greater(t, s.ConfidenceIntervalUpper, s.MeanSignal)
}

func TestAggregateSignalsEmptyBatch(t *testing.T) {
	s := AggregateSignals(nil, 0.95)

	require.NotNil(t, s.SentimentDistribution)
	assert.Empty(t, s.SentimentDistribution)
	assert.Equal(t, 0, s.TotalTweets)
	assert.Equal(t, 0.0, s.MeanSignal)
	assert.Equal(t, 0.0, s.ConfidenceIntervalLower)
	assert.Equal(t, 0.0, s.ConfidenceIntervalUpper)
}

func TestAggregateSignalsOrderIrrelevant(t *testing.T) {
	a := []Result{
		{CompositeSignal: 0.1, SentimentLabel: LabelNeutral},
		{CompositeSignal: 0.7, SentimentLabel: LabelPositive},
		{CompositeSignal: -0.2, SentimentLabel: LabelNegative},
	}
	b := []Result{a[2], a[0], a[1]}

	assert.Equal(t, AggregateSignals(a, 0.95), AggregateSignals(b, 0.95))
}
