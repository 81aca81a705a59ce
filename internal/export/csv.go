package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// column is one exported struct field and its output name.
type column struct {
	name  string
	index int
}

// columnsOf lists the exported fields of struct type t named by their
// `parquet` tag, so CSV and Parquet extracts share column names.
func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("parquet"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

// CSVHeader returns the column names written for T.
func CSVHeader[T any]() []string {
	cols := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// WriteCSV writes rows to path with a header line. Nil pointers are written
// as empty cells, timestamps as RFC3339.
func WriteCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	cols := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader[T]()); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for i := range rows {
		v := reflect.ValueOf(&rows[i]).Elem()
		for j, c := range cols {
			record[j] = formatCell(v.Field(c.index))
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func formatCell(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v.Interface())
}
