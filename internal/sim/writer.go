package sim

import "aether-sim/internal/telemetry"

// DecisionWriter is an interface to support different output writers.
type DecisionWriter interface {
	WriteDecision(telemetry.DecisionRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.DecisionRow) error
}

// SummaryWriter handles per-round summary rows.
type SummaryWriter interface {
	WriteSummary(telemetry.RoundSummaryRow) error
}

// writeRows sends rows to w, using batch mode when supported.
func writeRows(w DecisionWriter, rows []telemetry.DecisionRow) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.WriteDecision(r); err != nil {
			return err
		}
	}
	return nil
}
