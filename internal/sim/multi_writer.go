package sim

import (
	"errors"

	"aether-sim/internal/telemetry"
)

// MultiWriter fans decision and summary rows out to multiple writers. Every
// writer is attempted; the joined error reports the ones that failed.
type MultiWriter struct {
	writers []DecisionWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...DecisionWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// WriteDecision sends a decision row to all writers.
func (mw *MultiWriter) WriteDecision(row telemetry.DecisionRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteDecision(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple decision rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := writeRows(w, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteSummary sends a summary row to every writer that accepts summaries.
func (mw *MultiWriter) WriteSummary(row telemetry.RoundSummaryRow) error {
	var errs []error
	for _, w := range mw.writers {
		sw, ok := w.(SummaryWriter)
		if !ok {
			continue
		}
		if err := sw.WriteSummary(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that has a Close method.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
