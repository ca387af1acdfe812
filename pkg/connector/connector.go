// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

var (
	// ErrSchema wraps failures to drop or create a staging table
	ErrSchema = errors.New("staging table schema")
	// ErrInsert wraps failures while writing rows
	ErrInsert = errors.New("staging table insert")
)

// DatabaseConnector defines the interface for staging warehouse connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sqlx.DB

	// Dialect names the warehouse flavour (postgres, mysql, snowflake)
	Dialect() string

	// Validate verifies the connection and permissions
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// ReplaceTable drops and recreates the table, then inserts every row
	ReplaceTable(ctx context.Context, table *model.Table, batchSize int) (int64, error)

	// CountRows returns the number of rows currently in a staging table
	CountRows(ctx context.Context, table string) (int64, error)
}

// PoolStats is a snapshot of the connection pool for logging
type PoolStats struct {
	Open         int
	InUse        int
	Idle         int
	MaxOpen      int
	WaitCount    int64
	WaitDuration time.Duration
}

// GetPoolStats reads the pool counters of db
func GetPoolStats(db *sql.DB) PoolStats {
	stats := db.Stats()
	return PoolStats{
		Open:         stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		MaxOpen:      stats.MaxOpenConnections,
		WaitCount:    stats.WaitCount,
		WaitDuration: stats.WaitDuration,
	}
}

// LogPoolStats logs connection pool statistics at debug level
func LogPoolStats(logger *zap.Logger, database string, db *sql.DB) {
	stats := GetPoolStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", database),
		zap.Int("open_connections", stats.Open),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpen),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// ConfigurePool applies the pool limits from cfg; zero values keep the
// database/sql defaults
func ConfigurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// openStager opens a pool for driverName, checks it answers within
// pingTimeout and wraps it in a stager for the configured dialect
func openStager(
	ctx context.Context,
	driverName, dsn string,
	cfg *config.DatabaseConfig,
	schema string,
	pingTimeout time.Duration,
	logger *zap.Logger,
) (*stager, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", cfg.Dialect, err)
	}
	ConfigurePool(db.DB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Dialect, err)
	}

	st, err := newStager(db, logger, cfg.Dialect, schema, cfg.StatementTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	LogPoolStats(logger, cfg.Database, db.DB)
	return st, nil
}

// closeDB logs final pool stats and closes the pool
func (s *stager) closeDB(database string) error {
	LogPoolStats(s.logger, database, s.db.DB)
	return s.db.Close()
}
