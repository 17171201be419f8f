package sim

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aether-sim/internal/telemetry"
)

func TestReplayLog(t *testing.T) {
	rows := []telemetry.DecisionRow{
		{ClusterID: 1, Round: 1, Timestamp: time.Unix(0, 0)},
		{ClusterID: 2, Round: 1, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &captureWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].ClusterID != r.ClusterID {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogMalformed(t *testing.T) {
	if err := ReplayLog(strings.NewReader("{not json"), &captureWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestReplayLogFileMissing(t *testing.T) {
	if err := ReplayLogFile(filepath.Join(t.TempDir(), "missing.jsonl"), &captureWriter{}, 0); err == nil {
		t.Fatalf("expected open error")
	}
}

type batchCapture struct {
	captureWriter
	batches [][]telemetry.DecisionRow
}

func (b *batchCapture) WriteBatch(rows []telemetry.DecisionRow) error {
	b.batches = append(b.batches, append([]telemetry.DecisionRow(nil), rows...))
	return nil
}

func TestReplayLogGroupsRounds(t *testing.T) {
	base := time.Unix(100, 0)
	rows := []telemetry.DecisionRow{
		{RunID: "a", ClusterID: 1, Round: 1, Timestamp: base},
		{RunID: "a", ClusterID: 2, Round: 1, Timestamp: base},
		{RunID: "a", ClusterID: 1, Round: 2, Timestamp: base.Add(time.Millisecond)},
		{RunID: "b", ClusterID: 1, Round: 2, Timestamp: base.Add(2 * time.Millisecond)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	bw := &batchCapture{}
	if err := ReplayLog(&buf, bw, 1000); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(bw.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(bw.batches))
	}
	if len(bw.batches[0]) != 2 || bw.batches[2][0].RunID != "b" {
		t.Fatalf("unexpected grouping %+v", bw.batches)
	}
	if len(bw.rows) != 0 {
		t.Fatalf("batch writer should not receive single rows")
	}
}
