package analyzer

import "math"

// engagementAnchor is the weighted engagement volume that maps to a score
// of 1.0; anything above it clamps.
const engagementAnchor = 100000

// EngagementScore normalizes interaction counts to [0, 1]. Reposts weigh
// double and replies 1.5x relative to likes, and the weighted sum is
// log-compressed so outlier posts do not dominate. Negative counts are
// outside the domain and are clamped to zero before weighting.
func EngagementScore(likes, reposts, replies int) float64 {
	weighted := float64(clampNonNegative(likes)) +
		float64(clampNonNegative(reposts))*2 +
		float64(clampNonNegative(replies))*1.5

	if weighted == 0 {
		return 0.0
	}

	normalized := math.Log1p(weighted) / math.Log1p(engagementAnchor)
	return min(1.0, normalized)
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
