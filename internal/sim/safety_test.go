package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aether-sim/internal/config"
)

func TestSafetyGateStreak(t *testing.T) {
	g := &safetyGate{cfg: config.SafetyConfig{Enabled: true, ConsecutiveRounds: 2, Theta: 0.8}}
	low, high := 0.5, 0.9

	g.observe(&low)
	assert.False(t, g.active())
	g.observe(nil)
	assert.False(t, g.active(), "missing ratio must not extend the streak")
	g.observe(&low)
	assert.True(t, g.active())
	g.observe(&high)
	assert.False(t, g.active())
	assert.Equal(t, 0, g.bad)
}

func TestSafetyGateThetaBoundary(t *testing.T) {
	g := &safetyGate{cfg: config.SafetyConfig{Enabled: true, ConsecutiveRounds: 1, Theta: 0.8}}
	at := 0.8
	g.observe(&at)
	assert.False(t, g.active(), "a ratio equal to theta is not bad")
}

func TestSafetyGateDisabled(t *testing.T) {
	g := &safetyGate{cfg: config.SafetyConfig{Enabled: false, ConsecutiveRounds: 1, Theta: 0.8, PowerBump: true, PowerBumpDeltaDBm: 3}}
	low := 0.1
	g.observe(&low)
	assert.False(t, g.active())
	assert.Equal(t, 0.0, g.uplinkPower(0))
}

func TestSafetyGatePowerBump(t *testing.T) {
	g := &safetyGate{cfg: config.SafetyConfig{Enabled: true, ConsecutiveRounds: 0, Theta: 0.8, PowerBump: true, PowerBumpDeltaDBm: 3}}
	assert.Equal(t, 2.0, g.uplinkPower(2))
	low := 0.1
	g.observe(&low)
	assert.True(t, g.active(), "zero consecutive rounds is treated as one")
	assert.Equal(t, 5.0, g.uplinkPower(2))

	g.cfg.PowerBump = false
	assert.Equal(t, 2.0, g.uplinkPower(2))
}
