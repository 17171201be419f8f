// Backbone cluster-head selection along the deployment's principal axis
package skeleton

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"aether-sim/internal/topology"
)

// Config parameterizes backbone selection and relay assignment.
type Config struct {
	K               int     `yaml:"k"`
	WAxisProximity  float64 `yaml:"w_axis_proximity"`
	WCentrality     float64 `yaml:"w_centrality"`
	DThresholdRatio float64 `yaml:"d_threshold_ratio"`
	QFar            float64 `yaml:"q_far"`
}

// DefaultConfig keeps one backbone head and lets the farthest quarter of heads
// relay through it when it lies within 15 % of the area diagonal.
func DefaultConfig() Config {
	return Config{
		K:               1,
		WAxisProximity:  0.7,
		WCentrality:     0.3,
		DThresholdRatio: 0.15,
		QFar:            0.75,
	}
}

// Axis is a line through Mean along the unit Direction.
type Axis struct {
	Mean      topology.Point
	Direction topology.Point
}

// Distance returns the perpendicular distance from p to the axis.
func (a Axis) Distance(p topology.Point) float64 {
	ux, uy := p.X-a.Mean.X, p.Y-a.Mean.Y
	proj := ux*a.Direction.X + uy*a.Direction.Y
	return math.Hypot(ux-proj*a.Direction.X, uy-proj*a.Direction.Y)
}

// Selector picks backbone heads and assigns far heads to them. It holds no
// state beyond its configuration.
type Selector struct {
	cfg Config
}

// NewSelector returns a backbone selector.
func NewSelector(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// Config returns the active configuration.
func (s *Selector) Config() Config { return s.cfg }

// PrincipalAxis returns the mean and first principal direction of the head positions.
func PrincipalAxis(chs []topology.ClusterHead) Axis {
	n := len(chs)
	if n == 0 {
		return Axis{Direction: topology.Point{X: 1}}
	}
	var mx, my float64
	for _, c := range chs {
		mx += c.X
		my += c.Y
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, sxy, syy float64
	for _, c := range chs {
		dx, dy := c.X-mx, c.Y-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	denom := float64(max(1, n-1))
	cov := mat.NewSymDense(2, []float64{sxx / denom, sxy / denom, sxy / denom, syy / denom})

	axis := Axis{Mean: topology.Point{X: mx, Y: my}, Direction: topology.Point{X: 1}}
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return axis
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	vx, vy := vecs.At(0, best), vecs.At(1, best)
	norm := math.Hypot(vx, vy) + 1e-12
	axis.Direction = topology.Point{X: vx / norm, Y: vy / norm}
	return axis
}

// Scores returns each head's backbone score in input order.
func (s *Selector) Scores(chs []topology.ClusterHead) []float64 {
	axis := PrincipalAxis(chs)
	dists := make([]float64, len(chs))
	for i, c := range chs {
		dists[i] = axis.Distance(c.Pos())
	}
	dNorm := topology.MinMax(dists)
	cNorm := topology.MinMax(topology.Centralities(chs))

	scores := make([]float64, len(chs))
	for i := range chs {
		scores[i] = s.cfg.WAxisProximity*(1-dNorm[i]) + s.cfg.WCentrality*cNorm[i]
	}
	return scores
}

// SelectBackbone returns the ids of the top min(k, len(chs)) heads; k below 1 is treated as 1.
func (s *Selector) SelectBackbone(chs []topology.ClusterHead, k int) []int {
	if len(chs) == 0 {
		return nil
	}
	return topology.TopK(topology.IDs(chs), s.Scores(chs), k)
}

// FarThreshold returns the q-quantile of the heads' distances to the base
// station, taking the sorted element at round-half-even(q·(n-1)).
func FarThreshold(chs []topology.ClusterHead, bs topology.Point, q float64) float64 {
	if len(chs) == 0 {
		return 0
	}
	d := make([]float64, len(chs))
	for i, c := range chs {
		d[i] = c.Pos().Dist(bs)
	}
	sort.Float64s(d)
	idx := int(math.RoundToEven(q * float64(len(d)-1)))
	idx = max(0, min(len(d)-1, idx))
	return d[idx]
}

// FarRatio is the share of heads at or beyond the q-quantile distance to the base station.
func FarRatio(chs []topology.ClusterHead, bs topology.Point, q float64) float64 {
	if len(chs) == 0 {
		return 0
	}
	th := FarThreshold(chs, bs, q)
	var far int
	for _, c := range chs {
		if c.Pos().Dist(bs) >= th {
			far++
		}
	}
	return float64(far) / float64(len(chs))
}

// AssignToBackbone maps each far non-backbone head to its nearest backbone head
// when that head lies within DThresholdRatio·areaDiagonal. Heads nearer the base
// station than the far threshold, or too far from every backbone head, are absent.
func (s *Selector) AssignToBackbone(chs []topology.ClusterHead, backboneIDs []int, bs topology.Point, areaDiagonal float64) map[int]int {
	assign := make(map[int]int)
	if len(chs) == 0 || len(backboneIDs) == 0 {
		return assign
	}
	isBackbone := make(map[int]bool, len(backboneIDs))
	for _, id := range backboneIDs {
		isBackbone[id] = true
	}
	var backbone []topology.ClusterHead
	for _, c := range chs {
		if isBackbone[c.ID] {
			backbone = append(backbone, c)
		}
	}
	if len(backbone) == 0 {
		return assign
	}

	farTh := FarThreshold(chs, bs, s.cfg.QFar)
	maxLink := s.cfg.DThresholdRatio * areaDiagonal
	for _, c := range chs {
		if isBackbone[c.ID] || c.Pos().Dist(bs) < farTh {
			continue
		}
		nearest := backbone[0]
		best := c.Pos().Dist(nearest.Pos())
		for _, b := range backbone[1:] {
			if d := c.Pos().Dist(b.Pos()); d < best {
				nearest, best = b, d
			}
		}
		if best <= maxLink {
			assign[c.ID] = nearest.ID
		}
	}
	return assign
}
