// Gateway cluster-head selection toward the base station
package gateway

import "aether-sim/internal/topology"

// Config weights distance to the base station, centrality among cluster heads
// and optional link quality. A negative distance weight favors heads near the BS.
type Config struct {
	K           int     `yaml:"k"`
	WDistBS     float64 `yaml:"w_dist_bs"`
	WCentrality float64 `yaml:"w_centrality"`
	WLink       float64 `yaml:"w_link"`
}

// DefaultConfig picks one gateway, mostly by proximity to the base station.
func DefaultConfig() Config {
	return Config{K: 1, WDistBS: -0.7, WCentrality: 0.3, WLink: 0.0}
}

// Selector ranks cluster heads as pre-aggregation gateways. It holds no state
// beyond its configuration.
type Selector struct {
	cfg Config
}

// NewSelector returns a gateway selector.
func NewSelector(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// Config returns the active configuration.
func (s *Selector) Config() Config { return s.cfg }

// Scores returns each cluster head's gateway score in input order.
func (s *Selector) Scores(chs []topology.ClusterHead, bs topology.Point) []float64 {
	dists := make([]float64, len(chs))
	for i, ch := range chs {
		dists[i] = ch.Pos().Dist(bs)
	}
	dNorm := topology.MinMax(dists)
	cNorm := topology.MinMax(topology.Centralities(chs))

	scores := make([]float64, len(chs))
	for i, ch := range chs {
		scores[i] = s.cfg.WDistBS*dNorm[i] +
			s.cfg.WCentrality*cNorm[i] +
			s.cfg.WLink*ch.LinkQuality
	}
	return scores
}

// Select returns the ids of the top min(K, len(chs)) cluster heads by score.
func (s *Selector) Select(chs []topology.ClusterHead, bs topology.Point) []int {
	if len(chs) == 0 {
		return nil
	}
	return topology.TopK(topology.IDs(chs), s.Scores(chs, bs), s.cfg.K)
}
