package sim

import (
	"encoding/json"
	"os"

	"aether-sim/internal/telemetry"
)

// FileWriter writes decision and summary rows to JSONL files.
type FileWriter struct {
	decFile *os.File
	sumFile *os.File
	decEnc  *json.Encoder
	sumEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to skip summaries.
func NewFileWriter(decisionPath, summaryPath string) (*FileWriter, error) {
	df, err := os.Create(decisionPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{decFile: df, decEnc: json.NewEncoder(df)}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			df.Close()
			return nil, err
		}
		fw.sumFile = sf
		fw.sumEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteDecision logs a single decision row.
func (f *FileWriter) WriteDecision(row telemetry.DecisionRow) error {
	return f.decEnc.Encode(row)
}

// WriteBatch logs multiple decision rows.
func (f *FileWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	for _, r := range rows {
		if err := f.WriteDecision(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a round summary row, if enabled.
func (f *FileWriter) WriteSummary(row telemetry.RoundSummaryRow) error {
	if f.sumEnc == nil {
		return nil
	}
	return f.sumEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.decFile != nil {
		if e := f.decFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.sumFile != nil {
		if e := f.sumFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
