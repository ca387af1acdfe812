package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/David-Botos/rewards-staging/pkg/model"
)

// ErrColumnMismatch is returned when an export does not carry the entity's columns
var ErrColumnMismatch = errors.New("export columns do not match entity")

// ReadJSON loads an array-of-records export back into a table. Missing
// keys are read as null.
func ReadJSON(path string, e model.Entity) (*model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	t := model.NewTable(e)
	for r, rec := range records {
		row := make([]model.Cell, len(e.Columns))
		for i, col := range e.Columns {
			cell, err := model.ParseJSONCell(col.Kind, rec[col.Name])
			if err != nil {
				return nil, fmt.Errorf("%s: record %d column %s: %w", path, r, col.Name, err)
			}
			row[i] = cell
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSV loads a CSV export back into a table. The header must name every
// entity column; order may differ.
func ReadCSV(path string, e model.Entity) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	positions := make([]int, len(e.Columns))
	for i, col := range e.Columns {
		pos, ok := index[col.Name]
		if !ok {
			return nil, fmt.Errorf("%s: %w: missing %s", path, ErrColumnMismatch, col.Name)
		}
		positions[i] = pos
	}

	t := model.NewTable(e)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		row := make([]model.Cell, len(e.Columns))
		for i, col := range e.Columns {
			cell, err := model.ParseCSVCell(col.Kind, record[positions[i]])
			if err != nil {
				return nil, fmt.Errorf("%s:%d column %s: %w", path, line, col.Name, err)
			}
			row[i] = cell
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
