// pkg/converter/values.go
package converter

import (
	"fmt"

	"github.com/David-Botos/rewards-staging/pkg/model"
)

// ConvertRow turns a row of cells into driver arguments. Null cells become nil.
func (c *TypeConverter) ConvertRow(row []model.Cell) ([]interface{}, error) {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		if cell == nil || cell.IsNull() {
			values[i] = nil
			continue
		}

		v, err := cell.Value()
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

// ConvertRows converts every row of a table, stopping at the first failure
func (c *TypeConverter) ConvertRows(table *model.Table) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(table.Rows))
	for i, row := range table.Rows {
		values, err := c.ConvertRow(row)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", table.Name, i, err)
		}
		rows = append(rows, values)
	}
	return rows, nil
}
