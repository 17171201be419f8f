// Fairness metrics used to discourage cluster-head hotspots
package fairness

import "math"

// DefaultTargetRatio is the share of rounds a node is expected to serve as cluster head.
const DefaultTargetRatio = 0.1

// JainIndex returns (Σv)² / (n·Σv²) over values, clamping negatives to zero.
// An empty set or an all-zero set is perfectly fair (1.0).
func JainIndex(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	var s1, s2 float64
	for _, v := range values {
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		s1 += v
		s2 += v * v
	}
	if s1 <= 0 || s2 <= 0 {
		return 1.0
	}
	return math.Min(1, (s1*s1)/(float64(len(values))*s2))
}

// CHUsagePenalty grows linearly from 0 at targetRatio to 1 at full-time cluster-head duty.
// rounds is the number of rounds played so far. The penalty is 0 when rounds is not
// positive or the node has never been a cluster head.
func CHUsagePenalty(usage map[int]int, chID, rounds int, targetRatio float64) float64 {
	if rounds <= 0 {
		return 0
	}
	used := float64(usage[chID]) / float64(rounds)
	over := math.Max(0, used-targetRatio)
	span := math.Max(1e-9, 1-targetRatio)
	return math.Min(1, over/span)
}
