package analyzer

// Composite signal weights. The synthesizer is a fixed linear policy, not a
// trained model; these constants are part of the contract.
const (
	sentimentWeight  = 0.5
	engagementWeight = 0.3
	customWeight     = 0.2

	// mentionSaturation is the mention count at which the mention
	// contribution saturates.
	mentionSaturation = 5.0
)

// CompositeSignal combines sentiment, engagement and custom features into one
// trading-relevance scalar.
func CompositeSignal(sentimentScore, engagementScore float64, custom CustomFeatures) float64 {
	customContribution := float64(custom.HasMarketHashtag)*0.1 +
		min(float64(custom.MentionCount)/mentionSaturation, 1.0)*0.1

	return sentimentScore*sentimentWeight +
		engagementScore*engagementWeight +
		customContribution*customWeight
}
