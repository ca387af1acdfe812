// Package export writes cleaned tables to disk and reads them back. Every
// entity gets a CSV file and a JSON array-of-records file; both are
// replaced atomically.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/David-Botos/rewards-staging/pkg/model"
)

// Writer writes both exports of a table into fixed directories
type Writer struct {
	CSVDir  string
	JSONDir string
}

// NewWriter creates a Writer for the given output directories
func NewWriter(csvDir, jsonDir string) *Writer {
	return &Writer{CSVDir: csvDir, JSONDir: jsonDir}
}

// Write writes the CSV then the JSON export of t
func (w *Writer) Write(t *model.Table) error {
	if err := WriteCSV(filepath.Join(w.CSVDir, t.Entity.CSVFile()), t); err != nil {
		return err
	}
	return WriteJSON(filepath.Join(w.JSONDir, t.Entity.JSONFile()), t)
}

// WriteCSV writes t as CSV with a header row. Null cells are empty fields.
func WriteCSV(path string, t *model.Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.ColumnNames()); err != nil {
			return err
		}

		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i, cell := range row {
				if cell.IsNull() {
					record[i] = ""
					continue
				}
				record[i] = cell.CSV()
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteJSON writes t as a JSON array of objects keyed by column name, keys
// in column order
func WriteJSON(path string, t *model.Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		keys := make([][]byte, len(t.Columns))
		for i, col := range t.Columns {
			k, err := json.Marshal(col.Name)
			if err != nil {
				return err
			}
			keys[i] = k
		}

		var buf bytes.Buffer
		buf.WriteByte('[')
		for r, row := range t.Rows {
			if r > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('{')
			for i, cell := range row {
				if i > 0 {
					buf.WriteByte(',')
				}
				buf.Write(keys[i])
				buf.WriteByte(':')
				v, err := cell.MarshalJSON()
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", r, t.Columns[i].Name, err)
				}
				buf.Write(v)
			}
			buf.WriteByte('}')
		}
		buf.WriteByte(']')

		_, err := w.Write(buf.Bytes())
		return err
	})
}

// writeAtomic writes to a temp file beside path and renames it into place
func writeAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
