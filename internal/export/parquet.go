package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// ParquetWriter writes rows of T to a Parquet file. The schema comes from
// the `parquet` struct tags on T.
//
//	Zstd: smaller extracts than Snappy, decode speed is fine for DuckDB
//	and pandas readers.
//
//	Page statistics on: lets engines skip pages on date and class filters.
type ParquetWriter[T any] struct {
	file   *os.File
	writer *parquet.GenericWriter[T]
}

// NewParquetWriter creates filename and prepares a writer for T.
func NewParquetWriter[T any](filename string) (*ParquetWriter[T], error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.PageBufferSize(8*1024),
		parquet.DataPageStatistics(true),
		parquet.CreatedBy("clinicalops", "1.0", ""),
	)

	return &ParquetWriter[T]{
		file:   file,
		writer: writer,
	}, nil
}

// Write writes a batch of rows.
func (w *ParquetWriter[T]) Write(rows []T) (int, error) {
	n, err := w.writer.Write(rows)
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file.
func (w *ParquetWriter[T]) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// WriteParquet writes rows to path in one go.
func WriteParquet[T any](path string, rows []T) error {
	w, err := NewParquetWriter[T](path)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
