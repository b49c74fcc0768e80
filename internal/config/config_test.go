package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, 4326, cfg.DefaultSRID)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.False(t, cfg.TracingEnabled)
	assert.True(t, cfg.SwaggerEnabled)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_SOURCE=file:places.db\nSERVER_ADDRESS=127.0.0.1:9000\nCACHE_TTL=30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:places.db", cfg.DBSource)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "DB_DRIVER must be postgres or sqlite")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		DBDriver:           "postgres",
		DBSource:           "postgresql://localhost/geoplaces",
		DBMaxConns:         4,
		ServerAddress:      ":8080",
		DefaultSRID:        4326,
		LogFormat:          "json",
		TracingSampleRatio: 0.5,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing source", mutate: func(c *Config) { c.DBSource = "" }, wantErr: "DB_SOURCE is required"},
		{name: "bad srid", mutate: func(c *Config) { c.DefaultSRID = 0 }, wantErr: "DEFAULT_SRID"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "cache without ttl", mutate: func(c *Config) { c.CacheAddr = "localhost:6379" }, wantErr: "CACHE_TTL"},
		{name: "sample ratio above one", mutate: func(c *Config) { c.TracingSampleRatio = 2 }, wantErr: "TRACING_SAMPLE_RATIO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
