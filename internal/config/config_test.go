package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[server]
http_port = 8090

[database]
host = "db"
port = 5433
user = "booking"
password = "from-file"
dbname = "courts"

[feed]
driver = "redis"

[redis]
addr = "redis:6379"

[availability]
idle_ttl = 120

[booking]
commit_timeout = 3
rate_limit_per_sec = 2.5
rate_limit_burst = 5

[user_service]
url = "http://users:8080"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Server.ShutdownTimeout, "default kept")
	assert.Equal(t, FeedDriverRedis, cfg.Feed.Driver)
	assert.Equal(t, 120, cfg.Availability.IdleTTL)
	assert.Equal(t, 300, cfg.Availability.ResyncInterval, "default kept")
	assert.Equal(t, 2.5, cfg.Booking.RateLimitPerSec)
	assert.Equal(t, "http://users:8080", cfg.UserService.URL)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv(EnvDBPassword, "from-env")
	t.Setenv(EnvRedisPassword, "redis-secret")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "redis-secret", cfg.Redis.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"no db name", func(c *Config) { c.Database.DBName = "" }},
		{"unknown feed driver", func(c *Config) { c.Feed.Driver = "kafka" }},
		{"redis feed without addr", func(c *Config) { c.Feed.Driver = FeedDriverRedis; c.Redis.Addr = "" }},
		{"zero commit timeout", func(c *Config) { c.Booking.CommitTimeout = 0 }},
		{"negative rate limit", func(c *Config) { c.Booking.RateLimitPerSec = -1 }},
		{"negative idle ttl", func(c *Config) { c.Availability.IdleTTL = -1 }},
		{"no user service", func(c *Config) { c.UserService.URL = "" }},
		{"metrics without path", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Database.DBName = "courts"
			cfg.UserService.URL = "http://users"
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "courts", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/courts?sslmode=disable", d.DSN())
}
