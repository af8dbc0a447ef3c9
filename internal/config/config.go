package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/openctemio/scanhistory/pkg/validator"
)

// Environment constants
const (
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Report    ReportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name  string `env:"APP_NAME" validate:"required"`
	Env   string `env:"APP_ENV" validate:"oneof=development test staging production"`
	Debug bool   `env:"APP_DEBUG"`
}

// ServerConfig holds HTTP server configuration for the report server.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST"`
	Port            int           `env:"SERVER_PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gte=0"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" validate:"gte=0"`
}

// DatabaseConfig holds the finding store configuration.
// SQLite uses Path; PostgreSQL uses URL when set, otherwise the discrete fields.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" validate:"db_driver"`
	Path   string `env:"DB_PATH"`

	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" validate:"min=0,max=65535"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" validate:"gte=0"`
	BusyTimeout     time.Duration `env:"DB_BUSY_TIMEOUT" validate:"gte=0"`
}

// RedisConfig holds Redis configuration for the report cache.
type RedisConfig struct {
	Enabled       bool          `env:"REDIS_ENABLED"`
	Host          string        `env:"REDIS_HOST"`
	Port          int           `env:"REDIS_PORT" validate:"min=0,max=65535"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB" validate:"gte=0"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" validate:"gte=0"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT"`
	MaxRetries    int           `env:"REDIS_MAX_RETRIES" validate:"gte=0,lte=10"`
	MinRetryDelay time.Duration `env:"REDIS_MIN_RETRY_DELAY"`
	MaxRetryDelay time.Duration `env:"REDIS_MAX_RETRY_DELAY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" validate:"log_level"`
	Format string `env:"LOG_FORMAT" validate:"log_format"`

	// Sampling keeps per-line progress logs bounded on large inputs.
	SamplingEnabled   bool    `env:"LOG_SAMPLING_ENABLED"`
	SamplingThreshold int     `env:"LOG_SAMPLING_THRESHOLD" validate:"gte=0"`
	SamplingRate      float64 `env:"LOG_SAMPLING_RATE" validate:"gte=0,lte=1"`

	SkipHealthLogs bool `env:"LOG_SKIP_HEALTH"`
}

// RateLimitConfig holds the report server rate limit.
type RateLimitConfig struct {
	Enabled        bool    `env:"RATE_LIMIT_ENABLED"`
	RequestsPerSec float64 `env:"RATE_LIMIT_RPS" validate:"gte=0"`
	Burst          int     `env:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// ReportConfig holds report rendering options.
type ReportConfig struct {
	Title    string        `env:"REPORT_TITLE" validate:"required"`
	CacheTTL time.Duration `env:"REPORT_CACHE_TTL" validate:"gte=0"`
}

// envFiles are tried in order; the first one found is loaded. Variables
// already present in the environment win over file values.
var envFiles = []string{".env", "../.env"}

// Load reads configuration from the environment, after loading the first
// .env file found.
func Load() (*Config, error) {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "scanhistory"),
			Env:   getEnv("APP_ENV", "development"),
			Debug: getEnvBool("APP_DEBUG", false),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 3000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", validator.DriverSQLite),
			Path:            getEnv("DB_PATH", "scan_history.db"),
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "scanhistory"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "scanhistory"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			BusyTimeout:     getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Enabled:       getEnvBool("REDIS_ENABLED", false),
			Host:          getEnv("REDIS_HOST", "localhost"),
			Port:          getEnvInt("REDIS_PORT", 6379),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			PoolSize:      getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:   getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			MaxRetries:    getEnvInt("REDIS_MAX_RETRIES", 3),
			MinRetryDelay: getEnvDuration("REDIS_MIN_RETRY_DELAY", 100*time.Millisecond),
			MaxRetryDelay: getEnvDuration("REDIS_MAX_RETRY_DELAY", 3*time.Second),
		},
		Log: LogConfig{
			Level:             getEnv("LOG_LEVEL", "info"),
			Format:            getEnv("LOG_FORMAT", "text"),
			SamplingEnabled:   getEnvBool("LOG_SAMPLING_ENABLED", true),
			SamplingThreshold: getEnvInt("LOG_SAMPLING_THRESHOLD", 100),
			SamplingRate:      getEnvFloat("LOG_SAMPLING_RATE", 0.01),
			SkipHealthLogs:    getEnvBool("LOG_SKIP_HEALTH", true),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSec: getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:          getEnvInt("RATE_LIMIT_BURST", 40),
		},
		Report: ReportConfig{
			Title:    getEnv("REPORT_TITLE", "Scan History Reports"),
			CacheTTL: getEnvDuration("REPORT_CACHE_TTL", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks field-level rules and the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if c.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case validator.DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case validator.DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			return errors.New("DATABASE_URL or DB_HOST is required for the postgres driver")
		}
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns && c.Database.MaxOpenConns > 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) must not exceed DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.App.Debug {
		return errors.New("APP_DEBUG must be false in production")
	}
	if c.Database.Driver == validator.DriverPostgres && c.Database.SSLMode == "disable" && c.Database.URL == "" {
		return errors.New("DB_SSLMODE must not be disable in production")
	}
	if c.Redis.Enabled && c.Redis.Password == "" {
		return errors.New("redis password must be set in production")
	}
	return nil
}

// sqlitePathEscaper percent-encodes the characters that end the path part of
// an SQLite URI filename.
var sqlitePathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// DSN returns the driver-specific data source name.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == validator.DriverSQLite {
		q := url.Values{}
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
		q.Add("_pragma", "journal_mode(WAL)")
		return "file:" + sqlitePathEscaper.Replace(c.Path) + "?" + q.Encode()
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP server address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if the application is in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if the application is in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
