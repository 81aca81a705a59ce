package synthea

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Source table names.
const (
	Encounters  = "encounters"
	Conditions  = "conditions"
	Procedures  = "procedures"
	Medications = "medications"
	Patients    = "patients"
	Providers   = "providers"
)

var (
	// ErrMissingInputDir is returned when the input directory does not exist.
	ErrMissingInputDir = errors.New("input directory not found")
	// ErrMissingFile is returned when a required Synthea file is absent.
	ErrMissingFile = errors.New("missing required Synthea file")
)

// CoreFiles lists the required tables in load order with their file names.
var CoreFiles = []struct {
	Table string
	File  string
}{
	{Encounters, "encounters.csv"},
	{Conditions, "conditions.csv"},
	{Procedures, "procedures.csv"},
	{Medications, "medications.csv"},
	{Patients, "patients.csv"},
	{Providers, "providers.csv"},
}

// Tables is the set of source tables keyed by table name.
type Tables map[string]*Table

// Issues returns the skipped-row issues of every table in load order.
func (ts Tables) Issues() []Issue {
	var out []Issue
	for _, cf := range CoreFiles {
		if t, ok := ts[cf.Table]; ok {
			out = append(out, t.Issues...)
		}
	}
	return out
}

// LoadAll reads every required file from dir. All files are checked for
// existence before any is read, so a partial export fails fast.
func LoadAll(dir string) (Tables, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingInputDir, dir)
	}

	for _, cf := range CoreFiles {
		path := filepath.Join(dir, cf.File)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
	}

	tables := make(Tables, len(CoreFiles))
	for _, cf := range CoreFiles {
		t, err := ReadTable(cf.Table, filepath.Join(dir, cf.File))
		if err != nil {
			return nil, err
		}
		tables[cf.Table] = t
	}
	return tables, nil
}
