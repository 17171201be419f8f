package cas

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	directFavoring = FeatureVector{Energy: 1, Link: 1, DistBS: 0, Radius: 0, Density: 0.5}
	chainFavoring  = FeatureVector{Energy: 0.5, Link: 0.5, DistBS: 0.5, Radius: 1, Density: 1}
	twoHopFavoring = FeatureVector{Energy: 1, Link: 1, DistBS: 1, Radius: 0, Density: 0, TailMax: 1}
	spreadFeatures = FeatureVector{Energy: 1, Link: 0, DistBS: 1, Radius: 0, Density: 1}
)

func TestSelect_DefaultWeightsPreferences(t *testing.T) {
	cases := []struct {
		name string
		f    FeatureVector
		want Mode
	}{
		{"direct", directFavoring, ModeDirect},
		{"chain", chainFavoring, ModeChain},
		{"two_hop", twoHopFavoring, ModeTwoHop},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSelector(DefaultConfig())
			res := s.Select(c.f)
			if res.Mode != c.want {
				t.Fatalf("got %s, want %s (raw %+v)", res.Mode, c.want, res.Raw)
			}
		})
	}
}

func TestSelect_EMASmoothing(t *testing.T) {
	s := NewSelector(DefaultConfig())
	s.Select(directFavoring)
	// direct raw = 0.6+0.6+0.05 = 1.25, alpha 0.2 from zero
	assert.InDelta(t, 0.25, s.State().EMA.Direct, 1e-12)
	s.Select(directFavoring)
	assert.InDelta(t, 0.2*1.25+0.8*0.25, s.State().EMA.Direct, 1e-12)
}

func TestSelect_TailBonus(t *testing.T) {
	base := twoHopFavoring
	base.TailMax = 0
	a := NewSelector(DefaultConfig()).Select(base)
	b := NewSelector(DefaultConfig()).Select(twoHopFavoring)
	// 0.2 * (1 - 0.6) smoothed by alpha 0.2
	assert.InDelta(t, 0.2*0.2*0.4, b.Raw.TwoHop-a.Raw.TwoHop, 1e-12)
	assert.InDelta(t, a.Raw.Direct, b.Raw.Direct, 1e-12)
}

func TestSelect_Hysteresis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.6
	s := NewSelector(cfg)

	first := s.Select(chainFavoring)
	require.Equal(t, ModeChain, first.Mode)

	second := s.Select(spreadFeatures)
	if second.Confidence >= cfg.MinConfidence {
		t.Fatalf("expected low confidence, got %v", second.Confidence)
	}
	if second.Mode != first.Mode || !second.Retained {
		t.Fatalf("expected retained mode %s, got %s (retained=%v)", first.Mode, second.Mode, second.Retained)
	}
}

func TestSelect_NoHysteresisOnFirstCall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.99
	res := NewSelector(cfg).Select(spreadFeatures)
	assert.False(t, res.Retained)
}

func TestSelect_UncertaintyPenalty(t *testing.T) {
	plain := NewSelector(DefaultConfig()).Select(spreadFeatures)

	cfg := DefaultConfig()
	cfg.LambdaUncertainty = 1
	cfg.UncertaintyConfThreshold = 0.6
	penalized := NewSelector(cfg).Select(spreadFeatures)

	penalty := 1 - plain.Confidence
	assert.InDelta(t, plain.Raw.Direct+0.1*penalty, penalized.Raw.Direct, 1e-12)
	assert.InDelta(t, plain.Raw.Chain-0.5*penalty, penalized.Raw.Chain, 1e-12)
	assert.InDelta(t, plain.Raw.TwoHop-1.0*penalty, penalized.Raw.TwoHop, 1e-12)
}

func TestSelect_Deterministic(t *testing.T) {
	st := State{EMA: Scores{Direct: 0.3, Chain: 0.1, TwoHop: -0.2}, LastMode: ModeChain, HasLast: true}
	a := NewSelectorWithState(DefaultConfig(), st).Select(chainFavoring)
	b := NewSelectorWithState(DefaultConfig(), st).Select(chainFavoring)
	assert.Equal(t, a, b)
}

func TestSelect_DegenerateScoresNormalizeToHalf(t *testing.T) {
	res := NewSelector(DefaultConfig()).Select(FeatureVector{})
	assert.Equal(t, Scores{Direct: 0.5, Chain: 0.5, TwoHop: 0.5}, res.Normalized)
	assert.Equal(t, ModeDirect, res.Mode)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestSelect_NormalizedRange(t *testing.T) {
	res := NewSelector(DefaultConfig()).Select(chainFavoring)
	for _, m := range Modes() {
		v := res.Normalized.Get(m)
		if v < 0 || v > 1 {
			t.Fatalf("normalized %s = %v out of range", m, v)
		}
	}
	assert.Equal(t, 1.0, res.Normalized.Chain)
}

func TestFeatureVector_Clamped(t *testing.T) {
	f := FeatureVector{Energy: -1, Link: 2, DistBS: math.NaN(), TailMax: 5}.Clamped()
	assert.Equal(t, FeatureVector{Energy: 0, Link: 1, DistBS: 0, TailMax: 1}, f)
}

func TestConfidence_Range(t *testing.T) {
	assert.Equal(t, 1.0, Confidence(FeatureVector{Energy: 0.3, Link: 0.3, DistBS: 0.3, Radius: 0.3, Density: 0.3}))
	c := Confidence(spreadFeatures)
	assert.InDelta(t, 1-math.Sqrt(0.24), c, 1e-12)
}

func TestMode_TextRoundTrip(t *testing.T) {
	b, err := json.Marshal(map[string]Mode{"m": ModeTwoHop})
	require.NoError(t, err)
	assert.JSONEq(t, `{"m":"two_hop"}`, string(b))

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("chain")))
	assert.Equal(t, ModeChain, m)
	assert.Error(t, m.UnmarshalText([]byte("flood")))
}
