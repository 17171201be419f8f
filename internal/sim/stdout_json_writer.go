package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"aether-sim/internal/telemetry"
)

// JSONStdoutWriter prints decision and summary rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteDecision outputs a decision row in JSON format.
func (w *JSONStdoutWriter) WriteDecision(row telemetry.DecisionRow) error {
	return w.encode(row)
}

// WriteBatch outputs multiple decision rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	for _, r := range rows {
		if err := w.WriteDecision(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary outputs a round summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(row telemetry.RoundSummaryRow) error {
	return w.encode(row)
}
