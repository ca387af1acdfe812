package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"RAW_JSON_PATH", "CLEANED_JSON_PATH", "CSV_PATH", "LOAD_BATCH_SIZE", "USER_DEDUP_POLICY",
	"LOG_LEVEL", "LOG_FORMAT", "DB_DIALECT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
	"DB_NAME", "DB_SCHEMA", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE", "DB_STATEMENT_TIMEOUT_SECONDS",
}

// clearEnv blanks every setting so ambient variables do not leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Paths.RawJSONPath)
	assert.Equal(t, "data/cleaned", cfg.Paths.CleanedJSONPath)
	assert.Equal(t, "data/csv", cfg.Paths.CSVPath)
	assert.Equal(t, 1000, cfg.LoadBatchSize)
	assert.Equal(t, "none", cfg.UserDedupPolicy)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	require.NotNil(t, cfg.Database)
	assert.Equal(t, DialectPostgres, cfg.Database.Dialect)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 300*time.Second, cfg.Database.StatementTimeout)

	assert.NoError(t, cfg.ValidateForClean(), "cleaning needs no database settings")
	assert.Error(t, cfg.ValidateForLoad(), "loading needs a user and database name")
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	keys := []string{"RAW_JSON_PATH", "USER_DEDUP_POLICY", "DB_DIALECT", "DB_USER", "DB_NAME"}
	for _, key := range keys {
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
	// process environment wins over the file
	t.Setenv("DB_NAME", "from_env")

	envFile := filepath.Join(t.TempDir(), "staging.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"RAW_JSON_PATH=/srv/raw\nUSER_DEDUP_POLICY=LAST\nDB_DIALECT=mysql\nDB_USER=loader\nDB_NAME=from_file\n"), 0o644))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/srv/raw", cfg.Paths.RawJSONPath)
	assert.Equal(t, "last", cfg.UserDedupPolicy)
	assert.Equal(t, DialectMySQL, cfg.Database.Dialect)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "loader", cfg.Database.User)
	assert.Equal(t, "from_env", cfg.Database.Database)
	assert.NoError(t, cfg.ValidateForLoad())
}

func TestLoadConfigUnreadableEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidateForClean(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown dedup policy", map[string]string{"USER_DEDUP_POLICY": "newest"}},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"non-positive batch size", map[string]string{"LOAD_BATCH_SIZE": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(missingEnvFile(t))
			require.NoError(t, err)
			assert.Error(t, cfg.ValidateForClean())
		})
	}

	t.Run("empty paths are rejected", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadConfig(missingEnvFile(t))
		require.NoError(t, err)
		cfg.Paths.CSVPath = ""
		assert.Error(t, cfg.ValidateForClean())
	})
}

func TestValidateForLoadSnowflake(t *testing.T) {
	base := func() *Config {
		return &Config{
			Paths:           PathsConfig{RawJSONPath: "r", CleanedJSONPath: "c", CSVPath: "v"},
			LoadBatchSize:   100,
			UserDedupPolicy: "none",
			LogLevel:        "info",
			LogFormat:       "console",
			Database: &DatabaseConfig{
				Dialect:  DialectSnowflake,
				User:     "loader",
				Database: "REWARDS",
			},
		}
	}

	cfg := base()
	assert.Error(t, cfg.ValidateForLoad(), "account and warehouse are required")

	cfg.Database.Account = "acme-xy123"
	cfg.Database.Warehouse = "LOAD_WH"
	assert.NoError(t, cfg.ValidateForLoad(), "host and port are optional for snowflake")

	cfg.Database.Dialect = "oracle"
	assert.Error(t, cfg.ValidateForLoad())

	cfg = base()
	cfg.Database = nil
	assert.Error(t, cfg.ValidateForLoad())
}

func TestConnectionString(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		c := &DatabaseConfig{
			Dialect: DialectPostgres, Host: "db", Port: 5432, User: "u", Password: "p",
			Database: "rewards", SSLMode: "disable", Schema: "staging",
		}
		dsn, err := c.ConnectionString()
		require.NoError(t, err)
		assert.Equal(t, "host=db port=5432 user=u password=p dbname=rewards sslmode=disable search_path=staging", dsn)
	})

	t.Run("postgres quoting", func(t *testing.T) {
		c := &DatabaseConfig{
			Dialect: DialectPostgres, Host: "db", Port: 5432, User: "u", Password: `it's a\secret`,
			Database: "rewards", SSLMode: "disable",
		}
		dsn, err := c.ConnectionString()
		require.NoError(t, err)
		assert.Equal(t, `host=db port=5432 user=u password='it\'s a\\secret' dbname=rewards sslmode=disable`, dsn)

		c.Password = ""
		dsn, err = c.ConnectionString()
		require.NoError(t, err)
		assert.Contains(t, dsn, "password='' dbname=rewards")
	})

	t.Run("mysql", func(t *testing.T) {
		c := &DatabaseConfig{Dialect: DialectMySQL, Host: "localhost", Port: 3306, User: "u", Password: "p", Database: "rewards"}
		dsn, err := c.ConnectionString()
		require.NoError(t, err)
		assert.Contains(t, dsn, "u:p@tcp(localhost:3306)/rewards")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("snowflake", func(t *testing.T) {
		c := &DatabaseConfig{
			Dialect: DialectSnowflake, Account: "acme-xy123", User: "loader", Password: "secret",
			Database: "REWARDS", Warehouse: "LOAD_WH", StatementTimeout: 90 * time.Second,
		}
		dsn, err := c.ConnectionString()
		require.NoError(t, err)
		assert.Contains(t, dsn, "acme-xy123")
		assert.Contains(t, dsn, "STATEMENT_TIMEOUT_IN_SECONDS=90")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := (&DatabaseConfig{Dialect: "sqlite"}).ConnectionString()
		assert.Error(t, err)
	})
}

func TestParseAuthenticator(t *testing.T) {
	assert.Equal(t, parseAuthenticator("snowflake"), parseAuthenticator(""))
	assert.NotEqual(t, parseAuthenticator("snowflake"), parseAuthenticator("OAUTH"))
	assert.Equal(t, parseAuthenticator("jwt"), parseAuthenticator("JWT"))
}
