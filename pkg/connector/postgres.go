// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
)

// PostgresConnector stages tables in a PostgreSQL schema
type PostgresConnector struct {
	*stager
	cfg *config.DatabaseConfig
}

// NewPostgresConnector opens a pgx pool for the staging database
func NewPostgresConnector(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("user", cfg.User))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}
	// Runtime parameter, so every pooled session carries it
	if cfg.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", cfg.StatementTimeout.Milliseconds())
	}

	st, err := openStager(ctx, "pgx", dsn, cfg, cfg.Schema, 5*time.Second, logger)
	if err != nil {
		return nil, err
	}
	return &PostgresConnector{stager: st, cfg: cfg}, nil
}

// Validate logs the server version and creates the staging schema
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	if c.schema == "" {
		return nil
	}
	query := "CREATE SCHEMA IF NOT EXISTS " + c.converter.QuoteIdentifier(c.schema)
	if _, err := c.ExecWithTimeout(ctx, query, c.timeout); err != nil {
		return fmt.Errorf("%w: failed to create schema %s: %v", ErrSchema, c.schema, err)
	}
	return nil
}

// Close closes the pool
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	return c.closeDB(c.cfg.Database)
}
