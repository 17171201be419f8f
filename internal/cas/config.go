package cas

// Weights is one mode's linear scoring coefficients over the feature vector.
type Weights struct {
	Energy   float64 `yaml:"energy" json:"energy"`
	Link     float64 `yaml:"link" json:"link"`
	DistBS   float64 `yaml:"dist_bs" json:"dist_bs"`
	Radius   float64 `yaml:"radius" json:"radius"`
	Density  float64 `yaml:"density" json:"density"`
	Fairness float64 `yaml:"fairness" json:"fairness"`
}

func (w Weights) score(f FeatureVector) float64 {
	return w.Energy*f.Energy +
		w.Link*f.Link +
		w.DistBS*f.DistBS +
		w.Radius*f.Radius +
		w.Density*f.Density +
		w.Fairness*f.Fairness
}

// Config parameterizes a Selector.
type Config struct {
	Eps                      float64 `yaml:"eps"`
	EMAAlpha                 float64 `yaml:"ema_alpha"`
	MinConfidence            float64 `yaml:"min_confidence"`
	LambdaUncertainty        float64 `yaml:"lambda_uncertainty"`
	UncertaintyConfThreshold float64 `yaml:"uncertainty_conf_threshold"`
	TwoHopTailThreshold      float64 `yaml:"twohop_tail_threshold"`

	Direct Weights `yaml:"direct"`
	Chain  Weights `yaml:"chain"`
	TwoHop Weights `yaml:"two_hop"`
}

// DefaultConfig favors Direct for good links and short distances, Chain for
// wide dense clusters and TwoHop for long tails.
func DefaultConfig() Config {
	return Config{
		Eps:                      1e-9,
		EMAAlpha:                 0.2,
		MinConfidence:            0.2,
		LambdaUncertainty:        0.0,
		UncertaintyConfThreshold: 0.4,
		TwoHopTailThreshold:      0.6,
		Direct: Weights{
			Energy: 0.6, Link: 0.6, DistBS: -0.5, Radius: -0.4, Density: 0.1, Fairness: -0.2,
		},
		Chain: Weights{
			Energy: 0.4, Link: 0.4, DistBS: 0.2, Radius: 0.6, Density: 0.4, Fairness: -0.2,
		},
		TwoHop: Weights{
			Energy: 0.5, Link: 0.5, DistBS: 0.5, Radius: 0.2, Density: 0.2, Fairness: -0.2,
		},
	}
}

func (c Config) weights(m Mode) Weights {
	switch m {
	case ModeChain:
		return c.Chain
	case ModeTwoHop:
		return c.TwoHop
	default:
		return c.Direct
	}
}
