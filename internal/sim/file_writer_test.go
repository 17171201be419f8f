package sim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"aether-sim/internal/telemetry"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	decPath := filepath.Join(dir, "decisions.jsonl")
	sumPath := filepath.Join(dir, "summary.jsonl")
	fw, err := NewFileWriter(decPath, sumPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteDecision(sampleRow()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fw.WriteSummary(telemetry.RoundSummaryRow{Round: 9}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got telemetry.DecisionRow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PlannedEnergyJ != 0.002 || got.UplinkID != telemetry.UplinkBaseStation {
		t.Fatalf("unexpected decision: %#v", got)
	}
	data, err = os.ReadFile(sumPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum telemetry.RoundSummaryRow
	if err := json.Unmarshal(data, &sum); err != nil || sum.Round != 9 {
		t.Fatalf("unexpected summary %#v (%v)", sum, err)
	}
}

func TestFileWriterWithoutSummary(t *testing.T) {
	fw, err := NewFileWriter(filepath.Join(t.TempDir(), "d.jsonl"), "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteSummary(telemetry.RoundSummaryRow{}); err != nil {
		t.Fatalf("summary should be a no-op: %v", err)
	}
}
