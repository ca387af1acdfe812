// pkg/connector/staging.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/converter"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

// defaultBatchSize matches the chunk size of the staging loads
const defaultBatchSize = 1000

// stager implements the table operations shared by every dialect
type stager struct {
	db        *sqlx.DB
	logger    *zap.Logger
	converter *converter.TypeConverter
	schema    string
	timeout   time.Duration
}

func newStager(db *sqlx.DB, logger *zap.Logger, dialect, schema string, timeout time.Duration) (*stager, error) {
	conv, err := converter.NewTypeConverter(logger, dialect)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &stager{
		db:        db,
		logger:    logger,
		converter: conv,
		schema:    schema,
		timeout:   timeout,
	}, nil
}

// DB returns the underlying database connection
func (s *stager) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the warehouse dialect
func (s *stager) Dialect() string {
	return s.converter.Dialect()
}

// ExecWithTimeout executes a statement with a timeout
func (s *stager) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.db.ExecContext(queryCtx, query, args...)
}

// ReplaceTable drops the staging table, recreates it from the table's
// columns and inserts every row in batches
func (s *stager) ReplaceTable(ctx context.Context, table *model.Table, batchSize int) (int64, error) {
	if err := s.DropTableIfExists(ctx, table.Name); err != nil {
		return 0, err
	}
	if err := s.CreateTable(ctx, table); err != nil {
		return 0, err
	}

	rows, err := s.converter.ConvertRows(table)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInsert, err)
	}
	return s.BatchInsert(ctx, table.Name, table.ColumnNames(), rows, batchSize)
}

// DropTableIfExists removes a staging table
func (s *stager) DropTableIfExists(ctx context.Context, table string) error {
	fullTableName := s.converter.QualifiedName(s.schema, table)
	if _, err := s.ExecWithTimeout(ctx, "DROP TABLE IF EXISTS "+fullTableName, s.timeout); err != nil {
		return fmt.Errorf("%w: failed to drop %s: %v", ErrSchema, fullTableName, err)
	}
	return nil
}

// CreateTable creates a staging table from the table's column kinds
func (s *stager) CreateTable(ctx context.Context, table *model.Table) error {
	fullTableName := s.converter.QualifiedName(s.schema, table.Name)

	columnDefs, err := s.converter.GenerateColumnDefinitions(table)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	// Build CREATE TABLE statement
	createSQL := fmt.Sprintf(
		"CREATE TABLE %s (\n\t%s\n)",
		fullTableName,
		strings.Join(columnDefs, ",\n\t"),
	)

	if _, err := s.ExecWithTimeout(ctx, createSQL, s.timeout); err != nil {
		return fmt.Errorf("%w: failed to create table %s: %v", ErrSchema, fullTableName, err)
	}

	s.logger.Info("Created table", zap.String("table", fullTableName))
	return nil
}

// BatchInsert performs a bulk insert into a table
func (s *stager) BatchInsert(
	ctx context.Context,
	table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	// Build the base query
	fullTableName := s.converter.QualifiedName(s.schema, table)
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = s.converter.QuoteIdentifier(col)
	}
	columnStr := strings.Join(quoted, ", ")
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var totalRowsInserted int64

	// Process in batches
	for i := 0; i < len(valueRows); i += batchSize {
		end := i + batchSize
		if end > len(valueRows) {
			end = len(valueRows)
		}

		currentBatch := valueRows[i:end]

		placeholders := make([]string, len(currentBatch))
		args := make([]interface{}, 0, len(currentBatch)*len(columns))
		for j, row := range currentBatch {
			if len(row) != len(columns) {
				return totalRowsInserted, fmt.Errorf("%w: row %d has %d values, want %d", ErrInsert, i+j, len(row), len(columns))
			}
			placeholders[j] = rowPlaceholder
			args = append(args, row...)
		}

		// Construct the query in the driver's bind style
		query := s.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			fullTableName, columnStr, strings.Join(placeholders, ", ")))

		result, err := s.ExecWithTimeout(ctx, query, s.timeout, args...)
		if err != nil {
			return totalRowsInserted, fmt.Errorf("%w: batch at row %d failed: %v", ErrInsert, i, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			s.logger.Warn("Couldn't get rows affected", zap.Error(err))
			rowsAffected = int64(len(currentBatch))
		}
		totalRowsInserted += rowsAffected

		s.logger.Debug("Inserted batch",
			zap.String("table", fullTableName),
			zap.Int("offset", i),
			zap.Int64("rows", rowsAffected))
	}

	return totalRowsInserted, nil
}

// CountRows returns the number of rows in a staging table
func (s *stager) CountRows(ctx context.Context, table string) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	query := "SELECT COUNT(*) FROM " + s.converter.QualifiedName(s.schema, table)
	if err := s.db.GetContext(queryCtx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
