// Cluster-head geometry shared by the gateway and backbone selectors
package topology

import (
	"math"
	"sort"
)

const (
	centralityEps = 1e-9
	degenerateEps = 1e-12
)

// Point is a planar position in meters.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ClusterHead is a read-only snapshot of one cluster head for a round.
// LinkQuality is optional; zero means unknown.
type ClusterHead struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	LinkQuality float64 `json:"link_quality,omitempty"`
}

// Pos returns the cluster head position.
func (c ClusterHead) Pos() Point { return Point{X: c.X, Y: c.Y} }

// Area is the deployment rectangle.
type Area struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Diagonal returns the rectangle diagonal, or 1 for an empty area so it can divide safely.
func (a Area) Diagonal() float64 {
	d := math.Hypot(a.Width, a.Height)
	if d <= 0 {
		return 1
	}
	return d
}

// Centralities returns, per cluster head, the inverse of its mean distance to
// every other cluster head. This is O(n²) in the number of cluster heads.
func Centralities(chs []ClusterHead) []float64 {
	out := make([]float64, len(chs))
	for i, a := range chs {
		var acc float64
		var n int
		for j, b := range chs {
			if i == j {
				continue
			}
			acc += a.Pos().Dist(b.Pos())
			n++
		}
		mean := 1.0
		if n > 0 {
			mean = acc / float64(n)
		}
		out[i] = 1 / (mean + centralityEps)
	}
	return out
}

// MinMax rescales values into [0,1]. A degenerate range maps every value to 0.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo <= degenerateEps {
		return out
	}
	for i, v := range values {
		out[i] = math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
	}
	return out
}

// TopK returns the ids of the k highest scores. Ties go to the higher id. k is
// clamped into [1, len(ids)]; empty input yields nil.
func TopK(ids []int, scores []float64, k int) []int {
	if len(ids) == 0 {
		return nil
	}
	type scored struct {
		id    int
		score float64
	}
	ranked := make([]scored, len(ids))
	for i := range ids {
		ranked[i] = scored{id: ids[i], score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id > ranked[j].id
	})
	k = max(1, min(k, len(ranked)))
	out := make([]int, k)
	for i := range out {
		out[i] = ranked[i].id
	}
	return out
}

// IDs returns the cluster head ids in input order.
func IDs(chs []ClusterHead) []int {
	ids := make([]int, len(chs))
	for i, c := range chs {
		ids[i] = c.ID
	}
	return ids
}
