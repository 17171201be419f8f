// Context-adaptive switching between Direct, Chain and TwoHop cluster transmission
package cas

import "math"

// tailBonusWeight scales how much a long cluster tail beyond the threshold favors TwoHop.
const tailBonusWeight = 0.2

// FeatureVector is one cluster's normalized context for a round. Every field is
// expected in [0,1]; out-of-range values are clamped and NaN reads as 0.
type FeatureVector struct {
	Energy   float64 `json:"energy" yaml:"energy"`
	Link     float64 `json:"link" yaml:"link"`
	DistBS   float64 `json:"dist_bs" yaml:"dist_bs"`
	Radius   float64 `json:"radius" yaml:"radius"`
	Density  float64 `json:"density" yaml:"density"`
	Fairness float64 `json:"fairness" yaml:"fairness"`
	TailMax  float64 `json:"tail_max" yaml:"tail_max"`
}

// Clamped returns a copy with every field clipped into [0,1].
func (f FeatureVector) Clamped() FeatureVector {
	return FeatureVector{
		Energy:   clip01(f.Energy),
		Link:     clip01(f.Link),
		DistBS:   clip01(f.DistBS),
		Radius:   clip01(f.Radius),
		Density:  clip01(f.Density),
		Fairness: clip01(f.Fairness),
		TailMax:  clip01(f.TailMax),
	}
}

// Scores holds one value per mode.
type Scores struct {
	Direct float64 `json:"direct"`
	Chain  float64 `json:"chain"`
	TwoHop float64 `json:"two_hop"`
}

// Get returns the score for m.
func (s Scores) Get(m Mode) float64 {
	switch m {
	case ModeChain:
		return s.Chain
	case ModeTwoHop:
		return s.TwoHop
	default:
		return s.Direct
	}
}

func (s *Scores) set(m Mode, v float64) {
	switch m {
	case ModeChain:
		s.Chain = v
	case ModeTwoHop:
		s.TwoHop = v
	default:
		s.Direct = v
	}
}

// State is the selector's memory between rounds: smoothed scores and the last decision.
type State struct {
	EMA      Scores `json:"ema"`
	LastMode Mode   `json:"last_mode"`
	HasLast  bool   `json:"has_last"`
}

// Result is one selection outcome.
type Result struct {
	Mode       Mode
	Confidence float64
	// Normalized is a min-max rescaling of the post-penalty scores for logging.
	Normalized Scores
	// Raw holds the post-penalty smoothed scores the choice was made on.
	Raw Scores
	// Retained is true when low confidence kept the previous mode.
	Retained bool
}

// Selector chooses a transmission mode per round for a single cluster. Each
// cluster needs its own Selector; it is not safe for concurrent use.
type Selector struct {
	cfg   Config
	state State
}

// NewSelector returns a selector with zeroed smoothing state.
func NewSelector(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// NewSelectorWithState resumes a selector from a previously captured state.
func NewSelectorWithState(cfg Config, st State) *Selector {
	return &Selector{cfg: cfg, state: st}
}

// Config returns the active configuration.
func (s *Selector) Config() Config { return s.cfg }

// SetConfig replaces the configuration between rounds; smoothing state is kept.
func (s *Selector) SetConfig(cfg Config) { s.cfg = cfg }

// State returns a copy of the smoothing state.
func (s *Selector) State() State { return s.state }

func (s *Selector) rawScore(m Mode, f FeatureVector) float64 {
	v := s.cfg.weights(m).score(f)
	if m == ModeTwoHop {
		v += tailBonusWeight * math.Max(0, f.TailMax-s.cfg.TwoHopTailThreshold)
	}
	return v
}

// Select scores every mode, smooths the scores and picks the best one. When
// confidence is below MinConfidence and a previous mode exists, that mode is kept.
func (s *Selector) Select(features FeatureVector) Result {
	f := features.Clamped()
	a := s.cfg.EMAAlpha

	var scores Scores
	for _, m := range Modes() {
		ema := a*s.rawScore(m, f) + (1-a)*s.state.EMA.Get(m)
		s.state.EMA.set(m, ema)
		scores.set(m, ema)
	}

	conf := Confidence(f)
	if s.cfg.LambdaUncertainty > 0 && conf < s.cfg.UncertaintyConfThreshold {
		penalty := s.cfg.LambdaUncertainty * (1 - conf)
		scores.Chain -= 0.5 * penalty
		scores.TwoHop -= 1.0 * penalty
		scores.Direct += 0.1 * penalty
	}

	chosen := ModeDirect
	for _, m := range Modes()[1:] {
		if scores.Get(m) > scores.Get(chosen) {
			chosen = m
		}
	}
	retained := false
	if s.state.HasLast && conf < s.cfg.MinConfidence {
		chosen = s.state.LastMode
		retained = true
	}
	s.state.LastMode = chosen
	s.state.HasLast = true

	return Result{
		Mode:       chosen,
		Confidence: conf,
		Normalized: normalize(scores, s.cfg.Eps),
		Raw:        scores,
		Retained:   retained,
	}
}

// Confidence is 1 minus the standard deviation of the five core features, in [0,1].
func Confidence(f FeatureVector) float64 {
	core := [...]float64{f.Energy, f.Link, f.DistBS, f.Radius, f.Density}
	var mean float64
	for _, v := range core {
		mean += v
	}
	mean /= float64(len(core))
	var msd float64
	for _, v := range core {
		msd += (v - mean) * (v - mean)
	}
	msd /= float64(len(core))
	return clip01(1 - math.Min(1, math.Sqrt(msd)))
}

func normalize(s Scores, eps float64) Scores {
	lo := math.Min(s.Direct, math.Min(s.Chain, s.TwoHop))
	hi := math.Max(s.Direct, math.Max(s.Chain, s.TwoHop))
	if hi-lo < eps {
		return Scores{Direct: 0.5, Chain: 0.5, TwoHop: 0.5}
	}
	span := hi - lo
	return Scores{
		Direct: (s.Direct - lo) / span,
		Chain:  (s.Chain - lo) / span,
		TwoHop: (s.TwoHop - lo) / span,
	}
}

func clip01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
