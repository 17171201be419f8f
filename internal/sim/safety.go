package sim

import "aether-sim/internal/config"

// safetyGate counts consecutive rounds with poor end-to-end delivery and
// forces direct transmission once the streak reaches the configured length.
type safetyGate struct {
	cfg config.SafetyConfig
	bad int
}

// observe folds in the previous round's delivery ratio; nil leaves the streak unchanged.
func (g *safetyGate) observe(ratio *float64) {
	if ratio == nil {
		return
	}
	if *ratio < g.cfg.Theta {
		g.bad++
		return
	}
	g.bad = 0
}

func (g *safetyGate) active() bool {
	return g.cfg.Enabled && g.bad >= max(1, g.cfg.ConsecutiveRounds)
}

// uplinkPower returns the transmit power for a hop to the base station.
func (g *safetyGate) uplinkPower(base float64) float64 {
	if g.active() && g.cfg.PowerBump {
		return base + g.cfg.PowerBumpDeltaDBm
	}
	return base
}
