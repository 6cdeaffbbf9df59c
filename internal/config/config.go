package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Драйверы ленты изменений
const (
	FeedDriverPostgres = "postgres"
	FeedDriverRedis    = "redis"
)

// Переменные окружения с секретами, перекрывают значения из файла
const (
	EnvDBPassword    = "DB_PASSWORD"
	EnvRedisPassword = "REDIS_PASSWORD"
)

var (
	// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Redis        RedisConfig        `toml:"redis"`
	Feed         FeedConfig         `toml:"feed"`
	Availability AvailabilityConfig `toml:"availability"`
	Booking      BookingConfig      `toml:"booking"`
	UserService  UserServiceConfig  `toml:"user_service"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения в формате URL (принимается и lib/pq, и pq.Listener)
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig параметры Redis (используется драйвером ленты redis)
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// FeedConfig параметры ленты изменений
type FeedConfig struct {
	Driver               string `toml:"driver"`
	Buffer               int    `toml:"buffer"`
	MinReconnectInterval int    `toml:"min_reconnect_interval_ms"`
	MaxReconnectInterval int    `toml:"max_reconnect_interval_ms"`
}

// AvailabilityConfig параметры индексов занятости (в секундах)
type AvailabilityConfig struct {
	IdleTTL        int `toml:"idle_ttl"`
	ResyncInterval int `toml:"resync_interval"`
	EvictInterval  int `toml:"evict_interval"`
}

// BookingConfig параметры коммита
type BookingConfig struct {
	CommitTimeout   int     `toml:"commit_timeout"` // секунды
	VenueCacheTTL   int     `toml:"venue_cache_ttl"`
	RateLimitPerSec float64 `toml:"rate_limit_per_sec"` // коммитов в секунду на пользователя, 0 - без ограничений
	RateLimitBurst  int     `toml:"rate_limit_burst"`
}

// UserServiceConfig параметры клиента UserService
type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig параметры метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load читает конфигурацию из TOML файла
// Секреты из .env (если файл есть) и окружения перекрывают значения файла
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env необязателен: в контейнере секреты приходят через окружение
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Feed: FeedConfig{
			Driver:               FeedDriverPostgres,
			Buffer:               256,
			MinReconnectInterval: 100,
			MaxReconnectInterval: 10000,
		},
		Availability: AvailabilityConfig{
			IdleTTL:        600,
			ResyncInterval: 300,
			EvictInterval:  60,
		},
		Booking: BookingConfig{
			CommitTimeout: 10,
			VenueCacheTTL: 60,
		},
		UserService: UserServiceConfig{Timeout: 5},
		Logs:        LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "court-booking",
		},
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvDBPassword); ok {
		cfg.Database.Password = v
	}
	if v, ok := os.LookupEnv(EnvRedisPassword); ok {
		cfg.Redis.Password = v
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535:
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	case c.Database.Host == "" || c.Database.DBName == "":
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	case c.Feed.Driver != FeedDriverPostgres && c.Feed.Driver != FeedDriverRedis:
		return fmt.Errorf("%w: feed.driver %q (want %s or %s)", ErrInvalidConfig, c.Feed.Driver, FeedDriverPostgres, FeedDriverRedis)
	case c.Feed.Driver == FeedDriverRedis && c.Redis.Addr == "":
		return fmt.Errorf("%w: redis.addr is required for the redis feed", ErrInvalidConfig)
	case c.Booking.CommitTimeout <= 0:
		return fmt.Errorf("%w: booking.commit_timeout must be positive", ErrInvalidConfig)
	case c.Booking.RateLimitPerSec < 0 || c.Booking.RateLimitBurst < 0:
		return fmt.Errorf("%w: booking rate limit must not be negative", ErrInvalidConfig)
	case c.Availability.IdleTTL < 0 || c.Availability.ResyncInterval < 0 || c.Availability.EvictInterval < 0:
		return fmt.Errorf("%w: availability intervals must not be negative", ErrInvalidConfig)
	case c.UserService.URL == "":
		return fmt.Errorf("%w: user_service.url is required", ErrInvalidConfig)
	case c.Metrics.Enabled && c.Metrics.Path == "":
		return fmt.Errorf("%w: metrics.path is required when metrics are enabled", ErrInvalidConfig)
	}
	return nil
}

// Seconds переводит значение конфигурации в секундах в time.Duration
func Seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

// Millis переводит значение конфигурации в миллисекундах в time.Duration
func Millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
