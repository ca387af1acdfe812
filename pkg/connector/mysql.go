// pkg/connector/mysql.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
)

// MySQLConnector stages tables in a MySQL database
type MySQLConnector struct {
	*stager
	cfg *config.DatabaseConfig
}

// NewMySQLConnector opens a MySQL pool for the staging database. MySQL has
// no schemas below a database, so tables live directly in DB_NAME.
func NewMySQLConnector(ctx context.Context, cfg *config.DatabaseConfig) (*MySQLConnector, error) {
	logger := zap.L().Named("mysql-connector")
	logger.Info("Connecting to MySQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	st, err := openStager(ctx, "mysql", dsn, cfg, "", 5*time.Second, logger)
	if err != nil {
		return nil, err
	}
	return &MySQLConnector{stager: st, cfg: cfg}, nil
}

// Validate checks the session landed in the configured database
func (c *MySQLConnector) Validate(ctx context.Context) error {
	var version, database string
	if err := c.db.QueryRowxContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &database); err != nil {
		return fmt.Errorf("failed to query MySQL version: %w", err)
	}
	c.logger.Info("Connected to MySQL",
		zap.String("version", version),
		zap.String("database", database))

	if database != c.cfg.Database {
		return fmt.Errorf("connected to database %s, expected %s", database, c.cfg.Database)
	}
	return nil
}

// Close closes the pool
func (c *MySQLConnector) Close() error {
	c.logger.Info("Closing MySQL connection")
	return c.closeDB(c.cfg.Database)
}
