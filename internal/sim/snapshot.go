package sim

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"aether-sim/internal/cas"
	"aether-sim/internal/linkstate"
	"aether-sim/internal/telemetry"
	"aether-sim/internal/topology"
)

// ErrInvalidSnapshot is returned when a round snapshot is inconsistent.
var ErrInvalidSnapshot = errors.New("sim: invalid round snapshot")

// Node is one sensor node as seen at the start of a round.
type Node struct {
	ID            int     `json:"id" yaml:"id"`
	X             float64 `json:"x" yaml:"x"`
	Y             float64 `json:"y" yaml:"y"`
	Energy        float64 `json:"energy" yaml:"energy"`
	InitialEnergy float64 `json:"initial_energy" yaml:"initial_energy"`
	Alive         bool    `json:"alive" yaml:"alive"`
	ClusterID     int     `json:"cluster_id" yaml:"cluster_id"`
	IsCH          bool    `json:"is_ch" yaml:"is_ch"`
}

// Pos returns the node position.
func (n Node) Pos() topology.Point { return topology.Point{X: n.X, Y: n.Y} }

// LinkEvent is one observed transmission outcome between two nodes.
type LinkEvent struct {
	Sender   int     `json:"sender" yaml:"sender"`
	Receiver int     `json:"receiver" yaml:"receiver"`
	RSSI     float64 `json:"rssi" yaml:"rssi"`
	Success  bool    `json:"success" yaml:"success"`
}

// RoundSnapshot is the network state handed to the pipeline for one round.
// Heads are alive nodes with IsCH set; members join the head whose id equals
// their ClusterID. Round is 1-based; TotalRounds is the planned run length and
// is informational only, duty shares are taken over the rounds played so far.
type RoundSnapshot struct {
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds"`
	BaseStation topology.Point `json:"base_station"`
	Area        topology.Area  `json:"area"`
	Nodes       []Node         `json:"nodes"`
	// Links are the outcomes observed during the previous round.
	Links []LinkEvent `json:"links,omitempty"`
	// CHUsage counts how many past rounds each node served as head.
	CHUsage map[int]int `json:"ch_usage,omitempty"`
	// DeliveryRatio is the previous round's end-to-end delivery ratio, if known.
	DeliveryRatio *float64 `json:"delivery_ratio,omitempty"`
}

func (s RoundSnapshot) validate() error {
	seen := make(map[int]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node id %d", ErrInvalidSnapshot, n.ID)
		}
		seen[n.ID] = true
	}
	if s.DeliveryRatio != nil && (*s.DeliveryRatio < 0 || *s.DeliveryRatio > 1) {
		return fmt.Errorf("%w: delivery ratio %v outside [0,1]", ErrInvalidSnapshot, *s.DeliveryRatio)
	}
	return nil
}

// ClusterDecision is the plan for one cluster in one round.
type ClusterDecision struct {
	ClusterID  int               `json:"cluster_id"`
	HeadID     int               `json:"head_id"`
	Members    []int             `json:"members"`
	Mode       cas.Mode          `json:"mode"`
	Forced     bool              `json:"forced"`
	Retained   bool              `json:"retained"`
	Confidence float64           `json:"confidence"`
	Scores     cas.Scores        `json:"scores"`
	Features   cas.FeatureVector `json:"features"`
	// RelayID is the two-hop relay member, set only when it forwards traffic.
	RelayID        *int    `json:"relay_id,omitempty"`
	LQI            float64 `json:"lqi"`
	UsagePenalty   float64 `json:"usage_penalty"`
	UplinkID       int     `json:"uplink_id"`
	PlannedEnergyJ float64 `json:"planned_energy_j"`
}

// RoundDecision is everything the pipeline decided for one round.
type RoundDecision struct {
	RunID     string    `json:"run_id"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"ts"`

	Clusters []ClusterDecision `json:"clusters"`
	Gateways []int             `json:"gateways"`
	Backbone []int             `json:"backbone"`
	// BackboneAssignment maps far non-backbone heads to their backbone head.
	BackboneAssignment map[int]int `json:"backbone_assignment,omitempty"`

	LQI          linkstate.Stats `json:"lqi"`
	FarRatio     float64         `json:"far_ratio"`
	SafetyActive bool            `json:"safety_active"`
	BadRounds    int             `json:"bad_rounds"`
	TxPowerDBm   float64         `json:"tx_power_dbm"`

	PlannedEnergyJ float64 `json:"planned_energy_j"`
}

// ModeCounts returns how many clusters chose each mode.
func (d *RoundDecision) ModeCounts() map[cas.Mode]int {
	counts := make(map[cas.Mode]int, len(cas.Modes()))
	for _, c := range d.Clusters {
		counts[c.Mode]++
	}
	return counts
}

// Rows flattens the decision into one telemetry row per cluster.
func (d *RoundDecision) Rows() []telemetry.DecisionRow {
	gw := toSet(d.Gateways)
	bb := toSet(d.Backbone)
	rows := make([]telemetry.DecisionRow, 0, len(d.Clusters))
	for _, c := range d.Clusters {
		rows = append(rows, telemetry.DecisionRow{
			RunID:          d.RunID,
			ClusterID:      c.ClusterID,
			Round:          d.Round,
			HeadID:         c.HeadID,
			Members:        len(c.Members),
			Mode:           c.Mode.String(),
			Forced:         c.Forced,
			Retained:       c.Retained,
			Confidence:     c.Confidence,
			ScoreDirect:    c.Scores.Direct,
			ScoreChain:     c.Scores.Chain,
			ScoreTwoHop:    c.Scores.TwoHop,
			Gateway:        gw[c.HeadID],
			Backbone:       bb[c.HeadID],
			UplinkID:       c.UplinkID,
			LQI:            c.LQI,
			UsagePenalty:   c.UsagePenalty,
			PlannedEnergyJ: c.PlannedEnergyJ,
			Timestamp:      d.Timestamp,
		})
	}
	return rows
}

// Summary aggregates the decision into a single round row.
func (d *RoundDecision) Summary() telemetry.RoundSummaryRow {
	counts := d.ModeCounts()
	return telemetry.RoundSummaryRow{
		RunID:          d.RunID,
		Round:          d.Round,
		Clusters:       len(d.Clusters),
		DirectCount:    counts[cas.ModeDirect],
		ChainCount:     counts[cas.ModeChain],
		TwoHopCount:    counts[cas.ModeTwoHop],
		Gateways:       len(d.Gateways),
		BackboneSize:   len(d.Backbone),
		FarRatio:       d.FarRatio,
		LQIMean:        d.LQI.Mean,
		LQIStdDev:      d.LQI.StdDev,
		SafetyActive:   d.SafetyActive,
		BadRounds:      d.BadRounds,
		PlannedEnergyJ: d.PlannedEnergyJ,
		Timestamp:      d.Timestamp,
	}
}

func toSet(ids []int) map[int]bool {
	s := make(map[int]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
