// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

// TypeConverter maps cleaned column kinds onto a warehouse dialect
type TypeConverter struct {
	logger  *zap.Logger
	dialect string
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Declare primary key and required columns NOT NULL
	EnforceNotNull bool
	// Fold column names to lower case before quoting
	LowerCaseIdentifiers bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		EnforceNotNull:       true,
		LowerCaseIdentifiers: false,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger, dialect string) (*TypeConverter, error) {
	return NewTypeConverterWithConfig(logger, dialect, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, dialect string, cfg TypeConverterConfig) (*TypeConverter, error) {
	if _, ok := typeTables[dialect]; !ok {
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger:  logger,
		dialect: dialect,
		config:  cfg,
	}, nil
}

// Dialect returns the dialect the converter targets
func (c *TypeConverter) Dialect() string {
	return c.dialect
}

// MapKind returns the column type for a cleaned column kind
func (c *TypeConverter) MapKind(kind model.Kind) (string, error) {
	sqlType, ok := typeTables[c.dialect][kind]
	if !ok {
		c.logger.Warn("Unknown column kind encountered",
			zap.String("kind", kind.String()),
			zap.String("dialect", c.dialect))
		return "", fmt.Errorf("no %s type for column kind %s", c.dialect, kind)
	}
	return sqlType, nil
}

// GenerateColumnDefinitions creates column definitions for a table
func (c *TypeConverter) GenerateColumnDefinitions(table *model.Table) ([]string, error) {
	definitions := make([]string, 0, len(table.Columns))

	for _, col := range table.Columns {
		sqlType, err := c.MapKind(col.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		nullability := "NULL"
		if c.config.EnforceNotNull && (col.IsPrimaryKey || !col.Nullable) {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			c.QuoteIdentifier(col.Name),
			sqlType,
			nullability))
	}

	return definitions, nil
}

// QuoteIdentifier quotes and escapes an identifier for the dialect. Column
// names such as _id and topBrand keep their case.
func (c *TypeConverter) QuoteIdentifier(name string) string {
	if c.config.LowerCaseIdentifiers {
		name = strings.ToLower(name)
	}
	if c.dialect == config.DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(name)
}

// QualifiedName quotes a table name, prefixed by schema when one is set
func (c *TypeConverter) QualifiedName(schema, table string) string {
	if schema == "" {
		return c.QuoteIdentifier(table)
	}
	return c.QuoteIdentifier(schema) + "." + c.QuoteIdentifier(table)
}
