// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
)

// SnowflakeConnector stages tables in a Snowflake schema
type SnowflakeConnector struct {
	*stager
	cfg *config.DatabaseConfig
}

// NewSnowflakeConnector opens a Snowflake pool for the staging database
func NewSnowflakeConnector(ctx context.Context, cfg *config.DatabaseConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")
	// Credentials stay out of the log
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	// Warehouses may need to resume before answering
	st, err := openStager(ctx, "snowflake", dsn, cfg, cfg.Schema, 10*time.Second, logger)
	if err != nil {
		return nil, err
	}
	return &SnowflakeConnector{stager: st, cfg: cfg}, nil
}

// Validate checks the session context and creates the staging schema
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, warehouse sql.NullString
	row := c.db.QueryRowxContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()")
	if err := row.Scan(&role, &database, &warehouse); err != nil {
		return fmt.Errorf("failed to read Snowflake session context: %w", err)
	}
	c.logger.Info("Connected to Snowflake",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("warehouse", warehouse.String))

	if !strings.EqualFold(database.String, c.cfg.Database) {
		return fmt.Errorf("connected to database %s, expected %s", database.String, c.cfg.Database)
	}
	if !warehouse.Valid {
		return fmt.Errorf("no active warehouse for role %s", role.String)
	}

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
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	return c.closeDB(c.cfg.Database)
}
