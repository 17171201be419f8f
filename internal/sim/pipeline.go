// Round pipeline turning network snapshots into routing decisions
package sim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aether-sim/internal/cas"
	"aether-sim/internal/config"
	"aether-sim/internal/energy"
	"aether-sim/internal/fairness"
	"aether-sim/internal/features"
	"aether-sim/internal/gateway"
	"aether-sim/internal/linkstate"
	"aether-sim/internal/logging"
	"aether-sim/internal/observability"
	"aether-sim/internal/skeleton"
	"aether-sim/internal/telemetry"
	"aether-sim/internal/topology"
)

// MetricsRecorder receives per-decision and per-round measurements.
type MetricsRecorder interface {
	ObserveDecision(mode string, confidence float64, forced, retained bool)
	ObserveRound(lqiMean float64, gateways, backbone int, plannedJ float64, safetyActive bool)
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithWriter sets the sink for decision rows. Summary rows are written too
// when the writer implements SummaryWriter.
func WithWriter(w DecisionWriter) Option { return func(p *Pipeline) { p.writer = w } }

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option { return func(p *Pipeline) { p.metrics = m } }

// WithTracer sets the tracer used for round spans.
func WithTracer(t trace.Tracer) Option { return func(p *Pipeline) { p.tracer = t } }

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// WithRunID fixes the run id stamped on every row.
func WithRunID(id string) Option { return func(p *Pipeline) { p.runID = id } }

// Pipeline runs the per-round decision sequence: link bookkeeping, per-cluster
// mode selection, duty penalties, backbone and gateway selection and energy
// pricing. It keeps per-cluster selector state between rounds and is safe for
// concurrent use, though rounds are processed one at a time.
type Pipeline struct {
	cfg     *config.Config
	model   *energy.Model
	links   *linkstate.Manager
	gateway *gateway.Selector
	sk      *skeleton.Selector
	safety  safetyGate

	selectors map[int]*cas.Selector

	writer  DecisionWriter
	metrics MetricsRecorder
	tracer  trace.Tracer
	now     func() time.Time
	runID   string

	mu     sync.Mutex
	latest *RoundDecision
}

// NewPipeline builds a pipeline for cfg.
func NewPipeline(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	profile, err := cfg.HardwareProfile()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:       cfg,
		model:     energy.NewModel(profile),
		links:     linkstate.NewManager(0, cfg.LinkState.Window),
		gateway:   gateway.NewSelector(cfg.Gateway.Config),
		sk:        skeleton.NewSelector(cfg.Skeleton.Config),
		safety:    safetyGate{cfg: cfg.Safety},
		selectors: make(map[int]*cas.Selector),
		tracer:    otel.Tracer(observability.TracerName),
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	return p, nil
}

// RunID returns the id stamped on every emitted row.
func (p *Pipeline) RunID() string { return p.runID }

// Links exposes the link-state manager fed by snapshot link events.
func (p *Pipeline) Links() *linkstate.Manager { return p.links }

// Latest returns the most recent decision, or nil before the first round.
func (p *Pipeline) Latest() *RoundDecision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// SelectorState returns the CAS state of a cluster, if it has been seen.
func (p *Pipeline) SelectorState(clusterID int) (cas.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.selectors[clusterID]
	if !ok {
		return cas.State{}, false
	}
	return s.State(), true
}

type clusterView struct {
	head    Node
	members []Node
}

// Round processes one snapshot and returns the decision. Writer failures are
// logged and do not fail the round.
func (p *Pipeline) Round(ctx context.Context, snap RoundSnapshot) (*RoundDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	_, span := p.tracer.Start(ctx, "round", trace.WithAttributes(attribute.Int("round", snap.Round)))
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := p.cfg
	diag := snap.Area.Diagonal()

	p.safety.observe(snap.DeliveryRatio)
	safetyActive := p.safety.active()

	for _, n := range snap.Nodes {
		if n.Alive {
			p.links.AddNode(n.ID)
		}
	}
	for _, ev := range snap.Links {
		p.links.UpdateLinkQuality(ev.Sender, ev.Receiver, ev.RSSI, ev.Success, snap.Round)
	}
	stats := p.links.NetworkStats(snap.Round)

	clusters := groupClusters(snap.Nodes)
	heads := make([]topology.ClusterHead, 0, len(clusters))
	lqi := make(map[int]float64, len(clusters))
	for _, c := range clusters {
		q := p.links.WeightedLQI(c.head.ID, snap.Round, cfg.LinkState.WPDR, cfg.LinkState.WRSSI)
		lqi[c.head.ID] = q
		heads = append(heads, topology.ClusterHead{ID: c.head.ID, X: c.head.X, Y: c.head.Y, LinkQuality: q})
	}

	fctx := features.Context{
		BaseStation:    snap.BaseStation,
		AreaDiagonal:   diag,
		TotalNodes:     len(snap.Nodes),
		EnergyNorm:     networkEnergyNorm(snap.Nodes),
		LinkNorm:       stats.Mean,
		EnableFairness: cfg.Fairness.Enabled,
	}

	d := &RoundDecision{
		RunID:        p.runID,
		Round:        snap.Round,
		Timestamp:    p.now().UTC(),
		Clusters:     make([]ClusterDecision, 0, len(clusters)),
		LQI:          stats,
		SafetyActive: safetyActive,
		BadRounds:    p.safety.bad,
		TxPowerDBm:   p.safety.uplinkPower(cfg.TxPowerDBm),
	}

	// Duty share is measured over the rounds played so far, this one included.
	elapsed := max(snap.Round, 1)

	for _, c := range clusters {
		cd := ClusterDecision{
			ClusterID: c.head.ID,
			HeadID:    c.head.ID,
			Members:   make([]int, 0, len(c.members)),
			Mode:      cas.ModeDirect,
			LQI:       lqi[c.head.ID],
		}
		fc := features.Cluster{Head: c.head.Pos()}
		for _, m := range c.members {
			cd.Members = append(cd.Members, m.ID)
			fc.Members = append(fc.Members, features.Member{ID: m.ID, Pos: m.Pos(), Energy: m.Energy})
		}
		cd.Features = features.Extract(fc, fctx)

		switch {
		case safetyActive:
			cd.Forced = true
		case len(c.members) == 0:
			// Nothing to route inside the cluster; the selector keeps its state.
		case cfg.CAS.Enabled:
			res := p.selector(c.head.ID).Select(cd.Features)
			cd.Mode = res.Mode
			cd.Confidence = res.Confidence
			cd.Scores = res.Normalized
			cd.Retained = res.Retained
		}
		if cfg.Fairness.Enabled {
			cd.UsagePenalty = fairness.CHUsagePenalty(snap.CHUsage, c.head.ID, elapsed, cfg.Fairness.TargetRatio)
		}
		if p.metrics != nil {
			p.metrics.ObserveDecision(cd.Mode.String(), cd.Confidence, cd.Forced, cd.Retained)
		}
		d.Clusters = append(d.Clusters, cd)
	}

	if cfg.Skeleton.Enabled && len(heads) > 0 {
		d.FarRatio = skeleton.FarRatio(heads, snap.BaseStation, cfg.Skeleton.FarQuantile)
		if d.FarRatio >= cfg.Skeleton.FarRatioGate {
			d.Backbone = p.sk.SelectBackbone(heads, cfg.Skeleton.K)
			d.BackboneAssignment = p.sk.AssignToBackbone(heads, d.Backbone, snap.BaseStation, diag)
		}
	}

	if cfg.Gateway.Enabled && len(heads) > 0 {
		candidates := heads
		if len(d.Backbone) > 0 {
			bb := toSet(d.Backbone)
			candidates = make([]topology.ClusterHead, 0, len(d.Backbone))
			for _, h := range heads {
				if bb[h.ID] {
					candidates = append(candidates, h)
				}
			}
		}
		d.Gateways = p.gateway.Select(candidates, snap.BaseStation)
	}

	p.price(d, clusters, snap, diag)

	if p.metrics != nil {
		p.metrics.ObserveRound(stats.Mean, len(d.Gateways), len(d.Backbone), d.PlannedEnergyJ, safetyActive)
	}
	span.SetAttributes(
		attribute.Int("clusters", len(d.Clusters)),
		attribute.Int("gateways", len(d.Gateways)),
		attribute.Int("backbone", len(d.Backbone)),
		attribute.Bool("safety_active", safetyActive),
		attribute.Float64("planned_energy_j", d.PlannedEnergyJ),
	)

	if err := p.emit(d); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		log.Error("decision write failed", "round", d.Round, "err", err)
	}
	log.Debug("round decided",
		"round", d.Round,
		"clusters", len(d.Clusters),
		"gateways", d.Gateways,
		"backbone", d.Backbone,
		"safety_active", safetyActive,
	)

	p.latest = d
	return d, nil
}

func (p *Pipeline) selector(clusterID int) *cas.Selector {
	s, ok := p.selectors[clusterID]
	if !ok {
		s = cas.NewSelector(p.cfg.CAS.Config)
		p.selectors[clusterID] = s
	}
	return s
}

// price fills in the planned energy of every cluster and the uplink targets.
func (p *Pipeline) price(d *RoundDecision, clusters []clusterView, snap RoundSnapshot, diag float64) {
	pl := planner{
		model:      p.model,
		env:        energy.Environment{TempC: p.cfg.Environment.TempC, Humidity: p.cfg.Environment.Humidity},
		bits:       p.cfg.PacketBits(),
		txPowerDBm: p.cfg.TxPowerDBm,
	}
	bsPower := p.safety.uplinkPower(p.cfg.TxPowerDBm)

	pos := make(map[int]topology.Point, len(clusters))
	for _, c := range clusters {
		pos[c.head.ID] = c.head.Pos()
	}
	isGateway := toSet(d.Gateways)

	for i, c := range clusters {
		cd := &d.Clusters[i]
		members := make([]memberPos, len(c.members))
		for j, m := range c.members {
			members[j] = memberPos{id: m.ID, pos: m.Pos()}
		}
		intra, relay := pl.intraCluster(cd.Mode, c.head.Pos(), members, diag)
		cd.RelayID = relay

		head := c.head.Pos()
		target := telemetry.UplinkBaseStation
		if bb, ok := d.BackboneAssignment[c.head.ID]; ok && !isGateway[c.head.ID] {
			target = bb
		} else if !isGateway[c.head.ID] && len(d.Gateways) > 0 {
			target = nearest(head, d.Gateways, pos)
		}
		cd.UplinkID = target

		var up float64
		if target == telemetry.UplinkBaseStation {
			up = pl.uplink(head.Dist(snap.BaseStation), true, bsPower)
		} else {
			up = pl.uplink(head.Dist(pos[target]), false, p.cfg.TxPowerDBm)
		}
		cd.PlannedEnergyJ = intra + up
		d.PlannedEnergyJ += cd.PlannedEnergyJ
	}
}

// nearest returns the id in ids closest to from, ties to the lower id.
func nearest(from topology.Point, ids []int, pos map[int]topology.Point) int {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	best, bestD := sorted[0], math.Inf(1)
	for _, id := range sorted {
		if dist := from.Dist(pos[id]); dist < bestD {
			best, bestD = id, dist
		}
	}
	return best
}

func (p *Pipeline) emit(d *RoundDecision) error {
	if p.writer == nil {
		return nil
	}
	if err := writeRows(p.writer, d.Rows()); err != nil {
		return fmt.Errorf("write decisions: %w", err)
	}
	if sw, ok := p.writer.(SummaryWriter); ok {
		if err := sw.WriteSummary(d.Summary()); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

// groupClusters returns the alive heads in id order with their alive members.
// Members whose ClusterID does not name an alive head are left out.
func groupClusters(nodes []Node) []clusterView {
	byHead := make(map[int]*clusterView)
	for _, n := range nodes {
		if n.Alive && n.IsCH {
			byHead[n.ID] = &clusterView{head: n}
		}
	}
	for _, n := range nodes {
		if !n.Alive || n.IsCH {
			continue
		}
		if c, ok := byHead[n.ClusterID]; ok {
			c.members = append(c.members, n)
		}
	}
	out := make([]clusterView, 0, len(byHead))
	for _, id := range sortedKeys(byHead) {
		out = append(out, *byHead[id])
	}
	return out
}

// networkEnergyNorm is the mean residual energy of alive nodes over the
// largest initial energy in the network.
func networkEnergyNorm(nodes []Node) float64 {
	var residual []float64
	var maxInitial float64
	for _, n := range nodes {
		maxInitial = math.Max(maxInitial, n.InitialEnergy)
		if n.Alive {
			residual = append(residual, n.Energy)
		}
	}
	return features.EnergyNorm(residual, maxInitial)
}
