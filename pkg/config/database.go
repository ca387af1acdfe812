// pkg/config/database.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/snowflakedb/gosnowflake"
)

// Supported staging warehouse dialects
const (
	DialectPostgres  = "postgres"
	DialectMySQL     = "mysql"
	DialectSnowflake = "snowflake"
)

// DatabaseConfig holds staging warehouse connection parameters
type DatabaseConfig struct {
	Dialect  string `validate:"oneof=postgres mysql snowflake"`
	Host     string `validate:"required_unless=Dialect snowflake"`
	Port     int    `validate:"required_unless=Dialect snowflake,gte=0,lte=65535"`
	User     string `validate:"required"`
	Password string
	Database string `validate:"required"`
	Schema   string
	SSLMode  string

	// Snowflake only
	Account       string `validate:"required_if=Dialect snowflake"`
	Warehouse     string `validate:"required_if=Dialect snowflake"`
	Role          string
	Authenticator gosnowflake.AuthType

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// LoadDatabaseConfig loads database configuration from environment variables.
// Requirements are enforced by Config.ValidateForLoad so that the clean stage
// can run without any database settings.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	dialect := strings.ToLower(getEnv("DB_DIALECT", DialectPostgres))

	defaultPort := 5432
	if dialect == DialectMySQL {
		defaultPort = 3306
	}

	cfg := &DatabaseConfig{
		Dialect:  dialect,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", defaultPort),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", ""),
		Schema:   getEnv("DB_SCHEMA", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		Account:       getEnv("SNOWFLAKE_ACCOUNT", ""),
		Warehouse:     getEnv("SNOWFLAKE_WAREHOUSE", ""),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),

		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime:  time.Duration(getEnvAsInt("DB_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("DB_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	if cfg.Port < 0 {
		return nil, fmt.Errorf("DB_PORT must not be negative, got %d", cfg.Port)
	}

	return cfg, nil
}

// Convert authenticator string to proper type
func parseAuthenticator(s string) gosnowflake.AuthType {
	switch strings.ToLower(s) {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// ConnectionString returns the driver DSN for the configured dialect
func (c *DatabaseConfig) ConnectionString() (string, error) {
	switch c.Dialect {
	case DialectPostgres:
		return c.postgresDSN(), nil
	case DialectMySQL:
		return c.mysqlDSN(), nil
	case DialectSnowflake:
		return c.snowflakeDSN()
	default:
		return "", fmt.Errorf("unsupported database dialect %q", c.Dialect)
	}
}

func (c *DatabaseConfig) postgresDSN() string {
	pairs := []string{
		"host=" + pgValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + pgValue(c.User),
		"password=" + pgValue(c.Password),
		"dbname=" + pgValue(c.Database),
		"sslmode=" + pgValue(c.SSLMode),
	}
	if c.Schema != "" {
		pairs = append(pairs, "search_path="+pgValue(c.Schema))
	}
	return strings.Join(pairs, " ")
}

// pgValue quotes a keyword/value connection string value when libpq would
// otherwise split or misread it
func pgValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func (c *DatabaseConfig) mysqlDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

func (c *DatabaseConfig) snowflakeDSN() (string, error) {
	sc := &gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
	}
	if c.StatementTimeout > 0 {
		timeout := strconv.Itoa(int(c.StatementTimeout.Seconds()))
		sc.Params = map[string]*string{"STATEMENT_TIMEOUT_IN_SECONDS": &timeout}
	}
	dsn, err := gosnowflake.DSN(sc)
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
	}
	return dsn, nil
}
