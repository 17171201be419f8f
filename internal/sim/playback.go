package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"aether-sim/internal/telemetry"
)

// ReplayLog replays a JSONL decision log from r to writer. Consecutive rows of
// the same run and round are delivered together, in batch mode when the writer
// supports it. A speed > 0 paces rounds by their recorded timestamps, scaled by
// speed; otherwise rounds are written back to back.
func ReplayLog(r io.Reader, writer DecisionWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var (
		pending []telemetry.DecisionRow
		prev    time.Time
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		ts := pending[0].Timestamp
		if !prev.IsZero() && speed > 0 {
			if wait := time.Duration(float64(ts.Sub(prev)) / speed); wait > 0 {
				time.Sleep(wait)
			}
		}
		prev = ts
		err := writeRows(writer, pending)
		pending = pending[:0]
		return err
	}

	for line := 1; ; line++ {
		var row telemetry.DecisionRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return flush()
			}
			return fmt.Errorf("decode decision %d: %w", line, err)
		}
		if n := len(pending); n > 0 && (pending[n-1].Round != row.Round || pending[n-1].RunID != row.RunID) {
			if err := flush(); err != nil {
				return err
			}
		}
		pending = append(pending, row)
	}
}

// ReplayLogFile opens a decision log and replays it.
func ReplayLogFile(path string, writer DecisionWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
