package analyzer

import "math"

// DefaultConfidenceLevel is the two-sided confidence level for aggregate
// signal intervals.
const DefaultConfidenceLevel = 0.95

// Summary is the batch-level aggregate of per-post signals. The JSON field
// names are a compatibility surface for downstream consumers and must not
// change.
type Summary struct {
	MeanSignal              float64        `json:"mean_signal"`
	StdSignal               float64        `json:"std_signal"`
	ConfidenceIntervalLower float64        `json:"confidence_interval_lower"`
	ConfidenceIntervalUpper float64        `json:"confidence_interval_upper"`
	MeanSentiment           float64        `json:"mean_sentiment"`
	MeanEngagement          float64        `json:"mean_engagement"`
	TotalTweets             int            `json:"total_tweets"`
	SentimentDistribution   map[string]int `json:"sentiment_distribution"`
}

// ConfidenceInterval computes a normal-approximation interval around the
// mean of signals at the given confidence level. An empty slice yields the
// degenerate interval (0, 0) rather than failing.
func ConfidenceInterval(signals []float64, level float64) (lower, upper float64) {
	if len(signals) == 0 {
		return 0.0, 0.0
	}
	if level <= 0 || level >= 1 {
		level = DefaultConfidenceLevel
	}

	m := mean(signals)
	sd := populationStd(signals, m)
	z := normQuantile((1 + level) / 2)
	margin := z * sd / math.Sqrt(float64(len(signals)))

	return m - margin, m + margin
}

// AggregateSignals reduces a batch of per-post results to summary
// statistics. An empty batch returns the zero-valued Summary with an empty
// distribution; it never fails.
func AggregateSignals(results []Result, level float64) Summary {
	dist := make(map[string]int)
	if len(results) == 0 {
		return Summary{SentimentDistribution: dist}
	}

	signals := make([]float64, len(results))
	sentiments := make([]float64, len(results))
	engagements := make([]float64, len(results))
	for i, r := range results {
		signals[i] = r.CompositeSignal
		sentiments[i] = r.SentimentScore
		engagements[i] = r.EngagementScore
		dist[r.SentimentLabel]++
	}

	m := mean(signals)
	lower, upper := ConfidenceInterval(signals, level)

	return Summary{
		MeanSignal:              m,
		StdSignal:               populationStd(signals, m),
		ConfidenceIntervalLower: lower,
		ConfidenceIntervalUpper: upper,
		MeanSentiment:           mean(sentiments),
		MeanEngagement:          mean(engagements),
		TotalTweets:             len(results),
		SentimentDistribution:   dist,
	}
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// populationStd uses the N denominator, not N-1; the interval width depends
// on this.
func populationStd(xs []float64, mean float64) float64 {
	s := 0.0
	for _, x := range xs {
		d := x - mean
		s += d * d
	}
	return math.Sqrt(s / float64(len(xs)))
}

// normQuantile is the inverse CDF of the standard normal distribution,
// computed with Acklam's rational approximation (relative error under
// 1.15e-9 across the domain, more than enough for interval widths).
func normQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	b := [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	c := [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	d := [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00,
	}

	const pLow = 0.02425
	const pHigh = 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > pHigh:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}
