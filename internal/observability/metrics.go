package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DecisionCollector bundles Prometheus metrics for the round pipeline. A nil
// collector is valid and records nothing.
type DecisionCollector struct {
	gatherer prometheus.Gatherer

	Rounds            prometheus.Counter
	ModeDecisions     *prometheus.CounterVec
	ForcedDirect      prometheus.Counter
	RetainedDecisions prometheus.Counter
	Confidence        prometheus.Histogram
	PlannedEnergy     prometheus.Counter

	NetworkLQI   prometheus.Gauge
	Gateways     prometheus.Gauge
	BackboneSize prometheus.Gauge
	SafetyActive prometheus.Gauge
}

// NewDecisionCollector registers the pipeline metrics against reg, defaulting
// to the global Prometheus registry when nil.
func NewDecisionCollector(reg prometheus.Registerer) (*DecisionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &DecisionCollector{gatherer: gatherer}
	var err error

	if c.Rounds, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aether_rounds_total",
		Help: "Number of rounds processed by the decision pipeline.",
	}), "aether_rounds_total"); err != nil {
		return nil, err
	}
	if c.ModeDecisions, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aether_mode_decisions_total",
		Help: "Per-cluster transmission mode decisions, labeled by mode.",
	}, []string{"mode"}), "aether_mode_decisions_total"); err != nil {
		return nil, err
	}
	if c.ForcedDirect, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aether_forced_direct_total",
		Help: "Cluster decisions forced to direct by the delivery safety gate.",
	}), "aether_forced_direct_total"); err != nil {
		return nil, err
	}
	if c.RetainedDecisions, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aether_retained_decisions_total",
		Help: "Cluster decisions that kept the previous mode because of low confidence.",
	}), "aether_retained_decisions_total"); err != nil {
		return nil, err
	}
	if c.Confidence, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aether_cas_confidence",
		Help:    "Confidence of CAS mode selections.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}), "aether_cas_confidence"); err != nil {
		return nil, err
	}
	if c.PlannedEnergy, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aether_planned_energy_joules_total",
		Help: "Energy in joules the chosen transmission plans are priced at.",
	}), "aether_planned_energy_joules_total"); err != nil {
		return nil, err
	}
	if c.NetworkLQI, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aether_network_lqi_mean",
		Help: "Mean link quality indicator across nodes in the last round.",
	}), "aether_network_lqi_mean"); err != nil {
		return nil, err
	}
	if c.Gateways, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aether_gateways",
		Help: "Number of gateway cluster heads selected in the last round.",
	}), "aether_gateways"); err != nil {
		return nil, err
	}
	if c.BackboneSize, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aether_backbone_size",
		Help: "Number of backbone cluster heads selected in the last round.",
	}), "aether_backbone_size"); err != nil {
		return nil, err
	}
	if c.SafetyActive, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aether_safety_gate_active",
		Help: "1 while the delivery safety gate forces direct transmission.",
	}), "aether_safety_gate_active"); err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveDecision records one cluster's mode decision.
func (c *DecisionCollector) ObserveDecision(mode string, confidence float64, forced, retained bool) {
	if c == nil {
		return
	}
	c.ModeDecisions.WithLabelValues(mode).Inc()
	if forced {
		c.ForcedDirect.Inc()
		return
	}
	c.Confidence.Observe(confidence)
	if retained {
		c.RetainedDecisions.Inc()
	}
}

// ObserveRound records round-level gauges and the plan's energy.
func (c *DecisionCollector) ObserveRound(lqiMean float64, gateways, backbone int, plannedJ float64, safetyActive bool) {
	if c == nil {
		return
	}
	c.Rounds.Inc()
	c.NetworkLQI.Set(lqiMean)
	c.Gateways.Set(float64(gateways))
	c.BackboneSize.Set(float64(backbone))
	if plannedJ > 0 {
		c.PlannedEnergy.Add(plannedJ)
	}
	if safetyActive {
		c.SafetyActive.Set(1)
	} else {
		c.SafetyActive.Set(0)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *DecisionCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
