package synthea

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Id", "id"},
		{"REASONDESCRIPTION", "reasondescription"},
		{"BASE_ENCOUNTER_COST", "base_encounter_cost"},
		{" Base Cost ($) ", "base_cost"},
		{"payer--coverage", "payer_coverage"},
		{"__x__", "x"},
	}
	for _, tt := range tests {
		if got := NormalizeColumnName(tt.in); got != tt.want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadTableEncounters(t *testing.T) {
	tbl, err := ReadTable(Encounters, "testdata/encounters.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	// BOM stripped from the first header.
	if tbl.Columns[0] != "id" {
		t.Errorf("first column = %q, want %q", tbl.Columns[0], "id")
	}
	if !tbl.Has("reasondescription") {
		t.Error("expected normalized reasondescription column")
	}
	if tbl.Has("REASONDESCRIPTION") {
		t.Error("raw header name should not be indexed")
	}

	// 10 data lines: the short enc-999 row is dropped by the loader, the
	// empty-id row survives until normalization.
	if tbl.Len() != 9 {
		t.Errorf("rows = %d, want 9", tbl.Len())
	}

	wantIssues := []Issue{{Table: Encounters, Row: 11, Reason: "expected 15 fields, got 2"}}
	if diff := cmp.Diff(wantIssues, tbl.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}

	first := tbl.Rows[0]
	if first.Num != 2 {
		t.Errorf("first row num = %d, want 2", first.Num)
	}
	if got := tbl.Get(first, "id"); got != "enc-001" {
		t.Errorf("id = %q, want enc-001", got)
	}
	if got := tbl.Get(first, "no_such_column"); got != "" {
		t.Errorf("absent column = %q, want empty", got)
	}

	// Quoted thousands separators stay inside one field.
	third := tbl.Rows[2]
	if got := tbl.Get(third, "total_claim_cost"); got != "12,400.75" {
		t.Errorf("total_claim_cost = %q, want 12,400.75", got)
	}
}

func TestReadTableSkipsBlankLines(t *testing.T) {
	in := "A,B\n1,2\n\n\n3,4\n"
	tbl, err := ReadCSV("x", strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if len(tbl.Issues) != 0 {
		t.Errorf("issues = %v, want none", tbl.Issues)
	}
	if tbl.Rows[1].Num != 5 {
		t.Errorf("second row num = %d, want 5", tbl.Rows[1].Num)
	}
}

func TestReadTableEmptyFile(t *testing.T) {
	if _, err := ReadCSV("x", strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoadAll(t *testing.T) {
	tables, err := LoadAll("testdata")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, cf := range CoreFiles {
		if _, ok := tables[cf.Table]; !ok {
			t.Errorf("missing table %s", cf.Table)
		}
	}
	if got := len(tables.Issues()); got != 1 {
		t.Errorf("issues = %d, want 1", got)
	}
	if got := tables[Providers].Len(); got != 3 {
		t.Errorf("providers = %d, want 3", got)
	}
}

func TestLoadAllMissingFile(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile("testdata/encounters.csv")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "encounters.csv"), src, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = LoadAll(dir)
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
	if !strings.Contains(err.Error(), "conditions.csv") {
		t.Errorf("error %q should name the missing file", err)
	}
}

func TestLoadAllMissingDir(t *testing.T) {
	_, err := LoadAll(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrMissingInputDir) {
		t.Fatalf("err = %v, want ErrMissingInputDir", err)
	}
}
