package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"aether-sim/internal/sim"
	"aether-sim/internal/topology"
)

// ErrInvalidScenario is returned when a scenario references unknown nodes or
// elects dead heads.
var ErrInvalidScenario = errors.New("scenario: invalid scenario")

// DefaultInitialEnergy is the starting energy in Joules for nodes that do not set one.
const DefaultInitialEnergy = 2.0

// Scenario is a network layout plus a scripted sequence of rounds: which nodes
// serve as cluster heads, which die, and what link outcomes were observed.
type Scenario struct {
	Name          string         `yaml:"name,omitempty"`
	Description   string         `yaml:"description,omitempty"`
	TotalRounds   int            `yaml:"total_rounds,omitempty"`
	BaseStation   topology.Point `yaml:"base_station"`
	Area          topology.Area  `yaml:"area"`
	InitialEnergy float64        `yaml:"initial_energy,omitempty"`
	Nodes         []NodeSpec     `yaml:"nodes"`
	Rounds        []RoundSpec    `yaml:"rounds"`
}

// NodeSpec places one sensor node.
type NodeSpec struct {
	ID     int     `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Energy float64 `yaml:"energy,omitempty"`
}

// RoundSpec scripts one round. Dead nodes and energy overrides carry over to
// later rounds.
type RoundSpec struct {
	Heads         []int           `yaml:"heads"`
	Dead          []int           `yaml:"dead,omitempty"`
	Energy        map[int]float64 `yaml:"energy,omitempty"`
	DeliveryRatio *float64        `yaml:"delivery_ratio,omitempty"`
	Links         []sim.LinkEvent `yaml:"links,omitempty"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Snapshots expands the scenario into per-round snapshots. Members join the
// nearest alive head, ties to the lower head id. CH usage counts only the
// rounds before each snapshot.
func (s *Scenario) Snapshots() ([]sim.RoundSnapshot, error) {
	initial := s.InitialEnergy
	if initial <= 0 {
		initial = DefaultInitialEnergy
	}
	total := s.TotalRounds
	if total <= 0 {
		total = len(s.Rounds)
	}

	index := make(map[int]int, len(s.Nodes))
	state := make([]sim.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node %d", ErrInvalidScenario, n.ID)
		}
		index[n.ID] = i
		e := n.Energy
		if e <= 0 {
			e = initial
		}
		state[i] = sim.Node{ID: n.ID, X: n.X, Y: n.Y, Energy: e, InitialEnergy: e, Alive: true}
	}
	known := func(round int, ids ...int) error {
		for _, id := range ids {
			if _, ok := index[id]; !ok {
				return fmt.Errorf("%w: round %d references unknown node %d", ErrInvalidScenario, round, id)
			}
		}
		return nil
	}

	usage := make(map[int]int)
	out := make([]sim.RoundSnapshot, 0, len(s.Rounds))
	for r, spec := range s.Rounds {
		round := r + 1
		if err := known(round, spec.Heads...); err != nil {
			return nil, err
		}
		if err := known(round, spec.Dead...); err != nil {
			return nil, err
		}
		for _, ev := range spec.Links {
			if err := known(round, ev.Sender, ev.Receiver); err != nil {
				return nil, err
			}
		}
		for _, id := range spec.Dead {
			state[index[id]].Alive = false
		}
		for id, e := range spec.Energy {
			if err := known(round, id); err != nil {
				return nil, err
			}
			state[index[id]].Energy = math.Max(0, e)
		}

		isHead := make(map[int]bool, len(spec.Heads))
		for _, id := range spec.Heads {
			if !state[index[id]].Alive {
				return nil, fmt.Errorf("%w: round %d elects dead node %d", ErrInvalidScenario, round, id)
			}
			isHead[id] = true
		}
		heads := append([]int(nil), spec.Heads...)
		sort.Ints(heads)

		nodes := make([]sim.Node, len(state))
		for i, n := range state {
			n.IsCH = isHead[n.ID]
			n.ClusterID = n.ID
			if !n.IsCH {
				n.ClusterID = nearestHead(n, heads, state, index)
			}
			nodes[i] = n
		}

		snapUsage := make(map[int]int, len(usage))
		for id, c := range usage {
			snapUsage[id] = c
		}
		out = append(out, sim.RoundSnapshot{
			Round:         round,
			TotalRounds:   total,
			BaseStation:   s.BaseStation,
			Area:          s.Area,
			Nodes:         nodes,
			Links:         spec.Links,
			CHUsage:       snapUsage,
			DeliveryRatio: spec.DeliveryRatio,
		})
		for _, id := range heads {
			usage[id]++
		}
	}
	return out, nil
}

// nearestHead returns the id of the head closest to n, or -1 when there is none.
func nearestHead(n sim.Node, heads []int, state []sim.Node, index map[int]int) int {
	best, bestD := -1, math.Inf(1)
	for _, id := range heads {
		if d := n.Pos().Dist(state[index[id]].Pos()); d < bestD {
			best, bestD = id, d
		}
	}
	return best
}
