package scenario

import (
	"aether-sim/internal/sim"
	"aether-sim/internal/topology"
)

// BuiltIn returns the predefined deployments that can be run without a file.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"corridor": corridor(),
		"grid":     grid(),
	}
}

// corridor is a thin strip of heads leading to a base station past its east end.
// Far heads forward through the backbone formed by the nearer ones.
func corridor() Scenario {
	var nodes []NodeSpec
	for i := 0; i < 5; i++ {
		nodes = append(nodes, NodeSpec{ID: i, X: 10 + 40*float64(i), Y: 25})
	}
	for i := 0; i < 5; i++ {
		nodes = append(nodes,
			NodeSpec{ID: 10 + 2*i, X: 10 + 40*float64(i), Y: 15},
			NodeSpec{ID: 11 + 2*i, X: 10 + 40*float64(i), Y: 35},
		)
	}
	heads := []int{0, 1, 2, 3, 4}
	rounds := make([]RoundSpec, 0, 8)
	for r := 0; r < 8; r++ {
		rounds = append(rounds, RoundSpec{
			Heads:         heads,
			DeliveryRatio: ratio(0.92 - 0.01*float64(r)),
			Links:         memberLinks(heads, r),
		})
	}
	return Scenario{
		Name:          "corridor",
		Description:   "Five clusters along a 200 m corridor with the base station 80 m past the last head.",
		BaseStation:   topology.Point{X: 250, Y: 25},
		Area:          topology.Area{Width: 200, Height: 50},
		InitialEnergy: DefaultInitialEnergy,
		Nodes:         nodes,
		Rounds:        rounds,
	}
}

// grid is a 4x4 field with rotating heads, a node failure and a delivery dip
// long enough to trip the safety fallback.
func grid() Scenario {
	var nodes []NodeSpec
	for i := 0; i < 16; i++ {
		nodes = append(nodes, NodeSpec{
			ID: i,
			X:  12.5 + 25*float64(i%4),
			Y:  12.5 + 25*float64(i/4),
		})
	}
	rotation := [][]int{{5, 6, 9, 10}, {0, 3, 12, 14}, {1, 7, 8, 13}}
	delivery := []float64{0.95, 0.9, 0.6, 0.5, 0.55, 0.88, 0.93, 0.95}
	rounds := make([]RoundSpec, 0, len(delivery))
	for r, d := range delivery {
		spec := RoundSpec{
			Heads:         rotation[r%len(rotation)],
			DeliveryRatio: ratio(d),
			Links:         memberLinks(rotation[r%len(rotation)], r),
		}
		if r == 3 {
			spec.Dead = []int{15}
			spec.Energy = map[int]float64{4: 0.4, 11: 0.6}
		}
		rounds = append(rounds, spec)
	}
	return Scenario{
		Name:          "grid",
		Description:   "Sixteen nodes on a 100 m grid with the base station 50 m north of the field.",
		BaseStation:   topology.Point{X: 50, Y: 150},
		Area:          topology.Area{Width: 100, Height: 100},
		InitialEnergy: DefaultInitialEnergy,
		Nodes:         nodes,
		Rounds:        rounds,
	}
}

// memberLinks yields one observation per head pair so link quality varies with the round.
func memberLinks(heads []int, round int) []sim.LinkEvent {
	var out []sim.LinkEvent
	for i, a := range heads {
		for _, b := range heads[i+1:] {
			out = append(out, sim.LinkEvent{
				Sender:   a,
				Receiver: b,
				RSSI:     -60 - float64((a+b+round)%5)*5,
				Success:  (a+b+round)%4 != 0,
			})
		}
	}
	return out
}

func ratio(v float64) *float64 { return &v }
