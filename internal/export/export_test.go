package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"

	"clinicalops/internal/model"
	"clinicalops/internal/normalize"
)

func sampleFeedback() []model.FeedbackRecord {
	start := time.Date(2020, 2, 1, 8, 0, 0, 0, time.UTC)
	stop := start.Add(72 * time.Hour)
	dur := 72.0
	return []model.FeedbackRecord{
		{
			ConsultID:          "enc-003",
			PatientID:          "pat-1",
			ClinicianID:        "prov-1",
			ConsultStart:       &start,
			ConsultStop:        &stop,
			EncounterClass:     "inpatient",
			DurationHours:      &dur,
			NPSScore:           2,
			NPSCategory:        model.NPSDetractor,
			SurveyResponse:     "Dissatisfied",
			ComplaintFlag:      true,
			ComplaintCategory:  "Continuity of care concern",
			QualitativeComment: "I experienced delays, and would like better follow-up.",
		},
		{
			ConsultID:         "enc-004",
			EncounterClass:    "emergency",
			NPSScore:          10,
			NPSCategory:       model.NPSPromoter,
			ComplaintCategory: "No complaint",
			DataQualityFlag:   model.QualityMissingTimestamps,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, "parquet": FormatParquet, "both": FormatBoth} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
}

func TestWriteCSVFeedback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb.csv")
	if err := WriteCSV(path, sampleFeedback()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	recs := readCSV(t, path)
	if len(recs) != 3 {
		t.Fatalf("lines = %d, want header + 2", len(recs))
	}

	header := recs[0]
	if header[0] != "consult_id" || header[len(header)-1] != "data_quality_flag" {
		t.Errorf("header = %v", header)
	}
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing from %v", name, header)
		return -1
	}

	first := recs[1]
	if got := first[col("consult_start")]; got != "2020-02-01T08:00:00Z" {
		t.Errorf("consult_start = %q", got)
	}
	if got := first[col("consult_duration_hours")]; got != "72" {
		t.Errorf("duration = %q", got)
	}
	if got := first[col("complaint_flag")]; got != "true" {
		t.Errorf("complaint_flag = %q", got)
	}
	if got := first[col("qualitative_comment")]; got != "I experienced delays, and would like better follow-up." {
		t.Errorf("comment with comma = %q", got)
	}

	second := recs[2]
	if got := second[col("consult_start")]; got != "" {
		t.Errorf("nil timestamp = %q, want empty", got)
	}
	if got := second[col("nps_score")]; got != "10" {
		t.Errorf("nps_score = %q", got)
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb.parquet")
	src := sampleFeedback()
	if err := WriteParquet(path, src); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	rows, err := parquet.ReadFile[model.FeedbackRecord](path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != len(src) {
		t.Fatalf("rows = %d, want %d", len(rows), len(src))
	}
	for i := range rows {
		if rows[i].ConsultID != src[i].ConsultID || rows[i].NPSScore != src[i].NPSScore {
			t.Errorf("row %d = %s/%d, want %s/%d", i, rows[i].ConsultID, rows[i].NPSScore, src[i].ConsultID, src[i].NPSScore)
		}
	}
	if rows[1].DurationHours != nil {
		t.Errorf("nil duration came back as %v", *rows[1].DurationHours)
	}
}

func TestWriteAllExtracts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	ds := &normalize.Dataset{
		Encounters: []model.Encounter{{ID: "enc-1"}, {ID: "enc-2"}},
		Patients:   []model.Patient{{ID: "pat-1"}},
	}
	ex := Extracts{
		Dataset:       ds,
		Consultations: []model.ConsultationRecord{{ConsultID: "enc-1"}, {ConsultID: "enc-2"}},
		Feedback:      sampleFeedback(),
	}

	written, err := Write(dir, FormatBoth, ex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written) != 16 {
		t.Fatalf("written = %d files, want 16", len(written))
	}

	var names []string
	for _, w := range written {
		if _, err := os.Stat(w.Path); err != nil {
			t.Errorf("missing %s: %v", w.Path, err)
		}
		names = append(names, filepath.Base(w.Path))
	}
	want := []string{
		"encounters_clean.csv", "encounters_clean.parquet",
		"conditions_clean.csv", "conditions_clean.parquet",
		"procedures_clean.csv", "procedures_clean.parquet",
		"medications_clean.csv", "medications_clean.parquet",
		"patients_clean.csv", "patients_clean.parquet",
		"providers_clean.csv", "providers_clean.parquet",
		"consultation_records.csv", "consultation_records.parquet",
		"patient_feedback_synthetic.csv", "patient_feedback_synthetic.parquet",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	// Empty tables still get a header-only CSV.
	if recs := readCSV(t, filepath.Join(dir, "conditions_clean.csv")); len(recs) != 1 {
		t.Errorf("conditions_clean.csv lines = %d, want header only", len(recs))
	}
}

func TestCSVHeaderUsesParquetNames(t *testing.T) {
	h := CSVHeader[model.Encounter]()
	if h[0] != "id" || h[1] != "start" {
		t.Errorf("header = %v", h)
	}
}
