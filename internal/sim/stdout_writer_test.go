package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"aether-sim/internal/config"
	"aether-sim/internal/telemetry"
)

func sampleRow() telemetry.DecisionRow {
	return telemetry.DecisionRow{
		RunID:          "r",
		ClusterID:      3,
		Round:          2,
		HeadID:         3,
		Members:        4,
		Mode:           "chain",
		Confidence:     0.75,
		Gateway:        true,
		UplinkID:       telemetry.UplinkBaseStation,
		PlannedEnergyJ: 0.002,
		Timestamp:      time.Unix(0, 0).UTC(),
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.WriteBatch([]telemetry.DecisionRow{sampleRow(), sampleRow()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteSummary(telemetry.RoundSummaryRow{Round: 2, Clusters: 1}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var got telemetry.DecisionRow
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Mode != "chain" || got.ClusterID != 3 || !got.Gateway {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestColorStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: config.Default(), out: buf}
	if err := w.WriteDecision(sampleRow()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Decision Engine Configuration:") || !strings.Contains(output, "cc2420_telosb") {
		t.Fatalf("overview not printed: %q", output)
	}
	for _, want := range []string{"cluster=3", "mode=chain", "uplink=bs", "gateway"} {
		if !strings.Contains(output, want) {
			t.Fatalf("missing %q in %q", want, output)
		}
	}

	buf.Reset()
	if err := w.WriteSummary(telemetry.RoundSummaryRow{Round: 2, SafetyActive: true, BadRounds: 3}); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if strings.Contains(buf.String(), "Decision Engine Configuration:") {
		t.Fatalf("overview printed more than once")
	}
	if !strings.Contains(buf.String(), "SAFETY(bad=3)") {
		t.Fatalf("safety flag missing: %q", buf.String())
	}
}
