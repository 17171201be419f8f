// Per-node link history and link quality index (LQI) derivation
package linkstate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultWindow is the number of samples kept per directed link.
	DefaultWindow = 50
	// DefaultPDRWeight and DefaultRSSIWeight blend delivery ratio and signal strength into the LQI.
	DefaultPDRWeight  = 0.6
	DefaultRSSIWeight = 0.4

	rssiFloorDBm   = -100.0
	rssiCeilingDBm = -30.0
)

// NodeID identifies a sensor node.
type NodeID = int

// LinkQualityRecord is a read-only copy of one directed link's history.
type LinkQualityRecord struct {
	NeighborID       NodeID
	RSSI             []float64 // oldest first
	Outcomes         []float64 // 1 for delivered, 0 for lost; oldest first
	LastUpdatedRound int
}

type link struct {
	rssi      *ring
	outcomes  *ring
	lastRound int
}

type lqiEntry struct {
	value       float64
	round       int
	wPDR, wRSSI float64
}

// Stats summarizes LQI across the network.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Manager accumulates link observations for a whole network. It is not safe
// for concurrent use; updates and queries for a round must be serialized.
type Manager struct {
	window int
	links  map[NodeID]map[NodeID]*link
	cache  map[NodeID]lqiEntry
}

// NewManager creates a manager pre-registering nodes 0..numNodes-1 and keeping
// window samples per directed link. A window below 1 falls back to DefaultWindow.
func NewManager(numNodes, window int) *Manager {
	if window < 1 {
		window = DefaultWindow
	}
	m := &Manager{
		window: window,
		links:  make(map[NodeID]map[NodeID]*link, numNodes),
		cache:  make(map[NodeID]lqiEntry),
	}
	for i := 0; i < numNodes; i++ {
		m.links[i] = make(map[NodeID]*link)
	}
	return m
}

// Window returns the per-link history capacity.
func (m *Manager) Window() int { return m.window }

// AddNode registers a node without history so it participates in network statistics.
func (m *Manager) AddNode(id NodeID) {
	if _, ok := m.links[id]; !ok {
		m.links[id] = make(map[NodeID]*link)
	}
}

// UpdateLinkQuality records one transmission outcome on both directions of the sender/receiver link.
func (m *Manager) UpdateLinkQuality(sender, receiver NodeID, rssi float64, success bool, round int) {
	m.updateDirected(sender, receiver, rssi, success, round)
	m.updateDirected(receiver, sender, rssi, success, round)
}

func (m *Manager) updateDirected(src, dst NodeID, rssi float64, success bool, round int) {
	m.AddNode(src)
	l, ok := m.links[src][dst]
	if !ok {
		l = &link{rssi: newRing(m.window), outcomes: newRing(m.window)}
		m.links[src][dst] = l
	}
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	l.rssi.push(rssi)
	l.outcomes.push(outcome)
	l.lastRound = round
}

// Link returns a copy of the src->dst history.
func (m *Manager) Link(src, dst NodeID) (LinkQualityRecord, bool) {
	l, ok := m.links[src][dst]
	if !ok {
		return LinkQualityRecord{}, false
	}
	return LinkQualityRecord{
		NeighborID:       dst,
		RSSI:             l.rssi.values(),
		Outcomes:         l.outcomes.values(),
		LastUpdatedRound: l.lastRound,
	}, true
}

// Nodes returns all known node ids in ascending order.
func (m *Manager) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(m.links))
	for id := range m.links {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LQI returns the node's link quality index for round using the default weights.
func (m *Manager) LQI(node NodeID, round int) float64 {
	return m.WeightedLQI(node, round, DefaultPDRWeight, DefaultRSSIWeight)
}

// WeightedLQI returns wPDR*avgPDR + wRSSI*normRSSI averaged over the node's
// neighbor links, or 0 when the node has no recorded links. The value is cached
// for the round; a query for another round recomputes it.
func (m *Manager) WeightedLQI(node NodeID, round int, wPDR, wRSSI float64) float64 {
	if e, ok := m.cache[node]; ok && e.round == round && e.wPDR == wPDR && e.wRSSI == wRSSI {
		return e.value
	}

	var totalPDR, totalRSSI float64
	var n int
	for _, l := range m.links[node] {
		if l.outcomes.len() == 0 {
			continue
		}
		totalPDR += l.outcomes.mean()
		totalRSSI += l.rssi.mean()
		n++
	}
	if n == 0 {
		return 0
	}

	avgPDR := totalPDR / float64(n)
	avgRSSI := totalRSSI / float64(n)
	normRSSI := (avgRSSI - rssiFloorDBm) / (rssiCeilingDBm - rssiFloorDBm)
	normRSSI = math.Max(0, math.Min(1, normRSSI))

	v := wPDR*avgPDR + wRSSI*normRSSI
	m.cache[node] = lqiEntry{value: v, round: round, wPDR: wPDR, wRSSI: wRSSI}
	return v
}

// NetworkStats returns population statistics of every known node's LQI at round.
func (m *Manager) NetworkStats(round int) Stats {
	ids := m.Nodes()
	if len(ids) == 0 {
		return Stats{}
	}
	vals := make([]float64, len(ids))
	for i, id := range ids {
		vals[i] = m.LQI(id, round)
	}
	mean, variance := stat.PopMeanVariance(vals, nil)
	s := Stats{Mean: mean, StdDev: math.Sqrt(variance), Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}
