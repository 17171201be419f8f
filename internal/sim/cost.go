package sim

import (
	"sort"

	"aether-sim/internal/cas"
	"aether-sim/internal/energy"
	"aether-sim/internal/topology"
)

// twoHopRelayThreshold is the member-to-head distance, as a share of the area
// diagonal, beyond which two-hop members route through the relay.
const twoHopRelayThreshold = 0.5

// planner prices transmission plans with the energy model.
type planner struct {
	model      *energy.Model
	env        energy.Environment
	bits       float64
	txPowerDBm float64
}

// hop is the cost of one packet sent over distance d and received by a node.
func (p planner) hop(d float64) float64 {
	return p.model.TransmissionEnergy(p.bits, d, p.txPowerDBm, p.env) + p.model.ReceptionEnergy(p.bits, p.env)
}

type memberPos struct {
	id  int
	pos topology.Point
}

// intraCluster returns the energy of collecting one packet per member at head
// under mode, plus the relay member when two-hop forwarding was used.
func (p planner) intraCluster(mode cas.Mode, head topology.Point, members []memberPos, areaDiagonal float64) (float64, *int) {
	if len(members) == 0 {
		return 0, nil
	}
	switch mode {
	case cas.ModeChain:
		ordered := byDistance(head, members)
		// Farthest first: each member hands its packet to the next one in, the nearest sends to the head.
		var total float64
		for i := len(ordered) - 1; i > 0; i-- {
			total += p.hop(ordered[i].pos.Dist(ordered[i-1].pos))
		}
		return total + p.hop(ordered[0].pos.Dist(head)), nil

	case cas.ModeTwoHop:
		if areaDiagonal <= 0 {
			areaDiagonal = 1
		}
		ordered := byDistance(head, members)
		if len(ordered) < 2 {
			return p.hop(ordered[0].pos.Dist(head)), nil
		}
		relay := ordered[len(ordered)/2]
		var total float64
		used := false
		for _, m := range members {
			d := m.pos.Dist(head)
			if m.id != relay.id && d/areaDiagonal > twoHopRelayThreshold {
				total += p.hop(m.pos.Dist(relay.pos))
				used = true
				continue
			}
			total += p.hop(d)
		}
		if !used {
			return total, nil
		}
		total += p.hop(relay.pos.Dist(head))
		id := relay.id
		return total, &id

	default:
		var total float64
		for _, m := range members {
			total += p.hop(m.pos.Dist(head))
		}
		return total, nil
	}
}

// uplink returns the cost of a head forwarding its aggregate over distance d.
// Hops to the base station are not charged reception energy.
func (p planner) uplink(d float64, toBaseStation bool, txPowerDBm float64) float64 {
	e := p.model.TransmissionEnergy(p.bits, d, txPowerDBm, p.env)
	if !toBaseStation {
		e += p.model.ReceptionEnergy(p.bits, p.env)
	}
	return e
}

// byDistance sorts members by distance to head, nearest first, ties by id.
func byDistance(head topology.Point, members []memberPos) []memberPos {
	ordered := append([]memberPos(nil), members...)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].pos.Dist(head), ordered[j].pos.Dist(head)
		if di != dj {
			return di < dj
		}
		return ordered[i].id < ordered[j].id
	})
	return ordered
}
