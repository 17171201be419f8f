package sim

import (
	"errors"
	"strings"
	"testing"

	"aether-sim/internal/telemetry"
)

type decisionOnly struct{ n int }

func (d *decisionOnly) WriteDecision(telemetry.DecisionRow) error {
	d.n++
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	plain := &decisionOnly{}
	full := &captureWriter{}
	failing := &captureWriter{err: errors.New("boom")}
	mw := NewMultiWriter(plain, full, failing)

	err := mw.WriteBatch([]telemetry.DecisionRow{sampleRow(), sampleRow()})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if plain.n != 2 || len(full.rows) != 2 {
		t.Fatalf("rows not delivered to all writers: %d, %d", plain.n, len(full.rows))
	}
	if err := mw.WriteSummary(telemetry.RoundSummaryRow{Round: 1}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(full.summaries) != 1 || len(failing.summaries) != 1 {
		t.Fatalf("summaries not forwarded")
	}
}
