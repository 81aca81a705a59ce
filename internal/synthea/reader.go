// Package synthea reads the Synthea CSV export into in-memory tables with
// normalized column names. Typing of the cells is left to package normalize.
package synthea

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Issue describes a source row that was skipped. Row is the 1-based line
// number in the source file counting the header as row 1.
type Issue struct {
	Table  string
	Row    int64
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s row %d: %s", i.Table, i.Row, i.Reason)
}

// Table is one CSV file held in memory.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
	Issues  []Issue

	colIdx map[string]int
}

// Row is a data row with the source line number it was read from.
type Row struct {
	Num    int64
	Fields []string
}

// NormalizeColumnName lower-cases a header and collapses every run of
// non-alphanumeric characters into a single underscore.
// "REASONDESCRIPTION" → "reasondescription"
// " Base Cost ($) " → "base_cost"
func NormalizeColumnName(name string) string {
	v := strings.ToLower(strings.TrimSpace(name))
	v = nonAlnumRe.ReplaceAllString(v, "_")
	return strings.Trim(v, "_")
}

// ReadTable reads the CSV file at path into a Table. Rows that cannot be
// parsed or whose field count differs from the header are skipped and
// recorded in Table.Issues.
func ReadTable(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(name, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads a table from r. See ReadTable.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	bufReader := bufio.NewReaderSize(r, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	t := &Table{
		Name:   name,
		colIdx: make(map[string]int),
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range header {
		col := NormalizeColumnName(h)
		t.Columns = append(t.Columns, col)
		// First occurrence wins for duplicated headers.
		if _, ok := t.colIdx[col]; !ok {
			t.colIdx[col] = i
		}
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				t.Issues = append(t.Issues, Issue{Table: name, Row: int64(perr.StartLine), Reason: perr.Err.Error()})
				continue
			}
			return nil, err
		}

		// Skip empty rows
		if len(fields) == 0 || (len(fields) == 1 && strings.TrimSpace(fields[0]) == "") {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(fields) != len(t.Columns) {
			t.Issues = append(t.Issues, Issue{
				Table:  name,
				Row:    int64(line),
				Reason: fmt.Sprintf("expected %d fields, got %d", len(t.Columns), len(fields)),
			})
			continue
		}
		t.Rows = append(t.Rows, Row{Num: int64(line), Fields: fields})
	}

	return t, nil
}

// Has reports whether the table has the normalized column col.
func (t *Table) Has(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// Get returns the raw cell for col, or "" when the column is absent.
func (t *Table) Get(row Row, col string) string {
	if i, ok := t.colIdx[col]; ok && i < len(row.Fields) {
		return row.Fields[i]
	}
	return ""
}

// Len returns the number of data rows kept.
func (t *Table) Len() int {
	return len(t.Rows)
}
