// Per-cluster CAS feature extraction from round geometry and energy
package features

import (
	"math"

	"aether-sim/internal/cas"
	"aether-sim/internal/fairness"
	"aether-sim/internal/topology"
)

// Member is one cluster member's position and residual energy.
type Member struct {
	ID     int
	Pos    topology.Point
	Energy float64
}

// Cluster is one cluster head with its alive members.
type Cluster struct {
	Head    topology.Point
	Members []Member
}

// Context carries the network-wide quantities shared by every cluster in a round.
type Context struct {
	BaseStation    topology.Point
	AreaDiagonal   float64
	TotalNodes     int
	EnergyNorm     float64 // mean alive residual energy over max initial energy
	LinkNorm       float64 // network LQI mean
	EnableFairness bool
}

// Geometry holds the raw member-to-head distances used for feature shaping.
type Geometry struct {
	MeanRadius float64
	MaxRadius  float64
	DistBS     float64
}

// Measure computes the cluster's radius statistics and head distance to the base station.
func Measure(c Cluster, bs topology.Point) Geometry {
	g := Geometry{DistBS: c.Head.Dist(bs)}
	if len(c.Members) == 0 {
		return g
	}
	var sum float64
	for _, m := range c.Members {
		d := m.Pos.Dist(c.Head)
		sum += d
		g.MaxRadius = math.Max(g.MaxRadius, d)
	}
	g.MeanRadius = sum / float64(len(c.Members))
	return g
}

// Extract builds the normalized feature vector for one cluster.
func Extract(c Cluster, ctx Context) cas.FeatureVector {
	diag := ctx.AreaDiagonal
	if diag <= 0 {
		diag = 1
	}
	g := Measure(c, ctx.BaseStation)

	f := cas.FeatureVector{
		Energy:  ctx.EnergyNorm,
		Link:    ctx.LinkNorm,
		DistBS:  g.DistBS / diag,
		Radius:  g.MeanRadius / diag,
		TailMax: g.MaxRadius / diag,
	}
	if ctx.TotalNodes > 0 {
		f.Density = float64(len(c.Members)) / float64(ctx.TotalNodes)
	}
	if ctx.EnableFairness && len(c.Members) > 0 {
		energies := make([]float64, len(c.Members))
		for i, m := range c.Members {
			energies[i] = m.Energy
		}
		f.Fairness = 1 - fairness.JainIndex(energies)
	}
	return f.Clamped()
}

// EnergyNorm returns mean residual energy of alive nodes over the largest initial energy, in [0,1].
func EnergyNorm(residual []float64, maxInitial float64) float64 {
	if len(residual) == 0 || maxInitial <= 0 {
		return 0
	}
	var sum float64
	for _, e := range residual {
		sum += e
	}
	return math.Max(0, math.Min(1, sum/float64(len(residual))/maxInitial))
}
