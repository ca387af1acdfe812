// pkg/model/metadata.go
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind is the logical type of a cleaned column
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTimestamp
	KindBool
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTimestamp:
		return "timestamp"
	case KindBool:
		return "bool"
	case KindFlag:
		return "flag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column represents metadata about a cleaned column
type Column struct {
	Name         string // Column name as written to exports and the staging table
	Kind         Kind   // Logical type
	Nullable     bool   // Whether column allows NULL values
	IsPrimaryKey bool   // Whether column identifies the row
}

// Table is a fully materialised in-memory collection of cleaned rows
type Table struct {
	Entity  Entity   // Collection the rows belong to
	Name    string   // Staging table name
	Columns []Column // Column definitions, in export order
	Rows    [][]Cell // One slice per row, aligned with Columns
}

// NewTable creates an empty table for an entity
func NewTable(e Entity) *Table {
	return &Table{
		Entity:  e,
		Name:    e.Table,
		Columns: e.Columns,
		Rows:    make([][]Cell, 0),
	}
}

// Append adds a row, checking its width
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (t *Table) GetColumnByName(name string) *Column {
	for i, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			return &t.Columns[i]
		}
	}
	return nil
}

// ParseJSONCell decodes a single JSON value into the cell type for kind
func ParseJSONCell(kind Kind, data []byte) (Cell, error) {
	if len(data) == 0 {
		data = jsonNull
	}
	switch kind {
	case KindText:
		var c Text
		err := json.Unmarshal(data, &c)
		return c, err
	case KindNumber:
		var c Number
		err := json.Unmarshal(data, &c)
		return c, err
	case KindTimestamp:
		var c Timestamp
		err := json.Unmarshal(data, &c)
		return c, err
	case KindBool:
		var c Bool
		err := json.Unmarshal(data, &c)
		return c, err
	case KindFlag:
		var c Flag
		err := json.Unmarshal(data, &c)
		return c, err
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

// ParseCSVCell decodes a CSV field into the cell type for kind. An empty
// field is null for every nullable kind.
func ParseCSVCell(kind Kind, field string) (Cell, error) {
	switch kind {
	case KindText:
		if field == "" {
			return NullText, nil
		}
		return NewText(field), nil
	case KindNumber:
		if field == "" {
			return Missing, nil
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("number: cannot parse %q", field)
		}
		return NewNumber(f), nil
	case KindTimestamp:
		if field == "" {
			return NotATime, nil
		}
		t, err := parseCSVTime(field)
		if err != nil {
			return nil, err
		}
		return NewTimestamp(t), nil
	case KindBool:
		if field == "" {
			return NullBool, nil
		}
		switch field {
		case "true":
			return NewBool(true), nil
		case "false":
			return NewBool(false), nil
		}
		return nil, fmt.Errorf("bool: cannot parse %q", field)
	case KindFlag:
		return parseFlag(field)
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}
