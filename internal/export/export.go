// Package export writes the processed extracts: cleaned source tables,
// consultation records and synthetic feedback, as CSV and/or Parquet.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"clinicalops/internal/model"
	"clinicalops/internal/normalize"
)

// Format selects the extract file types.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatBoth    Format = "both"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatParquet, FormatBoth:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, parquet or both)", s)
}

func (f Format) csv() bool     { return f == FormatCSV || f == FormatBoth }
func (f Format) parquet() bool { return f == FormatParquet || f == FormatBoth }

// File names without extension.
const (
	ConsultationsFile = "consultation_records"
	FeedbackFile      = "patient_feedback_synthetic"
)

// Written reports one extract file.
type Written struct {
	Path string
	Rows int
}

// Extracts is everything Write persists.
type Extracts struct {
	Dataset       *normalize.Dataset
	Consultations []model.ConsultationRecord
	Feedback      []model.FeedbackRecord
}

// Write creates dir if needed and writes every extract in the requested
// format(s).
func Write(dir string, format Format, ex Extracts) ([]Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []Written
	ds := ex.Dataset
	steps := []func() ([]Written, error){
		func() ([]Written, error) { return writeOne(dir, "encounters_clean", format, ds.Encounters) },
		func() ([]Written, error) { return writeOne(dir, "conditions_clean", format, ds.Conditions) },
		func() ([]Written, error) { return writeOne(dir, "procedures_clean", format, ds.Procedures) },
		func() ([]Written, error) { return writeOne(dir, "medications_clean", format, ds.Medications) },
		func() ([]Written, error) { return writeOne(dir, "patients_clean", format, ds.Patients) },
		func() ([]Written, error) { return writeOne(dir, "providers_clean", format, ds.Providers) },
		func() ([]Written, error) { return writeOne(dir, ConsultationsFile, format, ex.Consultations) },
		func() ([]Written, error) { return writeOne(dir, FeedbackFile, format, ex.Feedback) },
	}
	for _, step := range steps {
		w, err := step()
		if err != nil {
			return written, err
		}
		written = append(written, w...)
	}
	return written, nil
}

func writeOne[T any](dir, base string, format Format, rows []T) ([]Written, error) {
	var out []Written
	if format.csv() {
		path := filepath.Join(dir, base+".csv")
		if err := WriteCSV(path, rows); err != nil {
			return out, fmt.Errorf("export %s: %w", base, err)
		}
		out = append(out, Written{Path: path, Rows: len(rows)})
	}
	if format.parquet() {
		path := filepath.Join(dir, base+".parquet")
		if err := WriteParquet(path, rows); err != nil {
			return out, fmt.Errorf("export %s: %w", base, err)
		}
		out = append(out, Written{Path: path, Rows: len(rows)})
	}
	return out, nil
}
