// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/config"
)

// ConnectorFactory creates staging warehouse connectors
type ConnectorFactory struct {
	cfg    *config.DatabaseConfig
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.DatabaseConfig, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector opens and validates a connector for the configured dialect
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	f.logger.Info("Creating staging connector", zap.String("dialect", f.cfg.Dialect))

	var (
		conn DatabaseConnector
		err  error
	)
	switch f.cfg.Dialect {
	case config.DialectPostgres:
		conn, err = NewPostgresConnector(ctx, f.cfg)
	case config.DialectMySQL:
		conn, err = NewMySQLConnector(ctx, f.cfg)
	case config.DialectSnowflake:
		conn, err = NewSnowflakeConnector(ctx, f.cfg)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", f.cfg.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.Dialect, err)
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close() // Clean up the connection if validation fails
		return nil, fmt.Errorf("failed to validate %s connector: %w", f.cfg.Dialect, err)
	}

	return conn, nil
}
