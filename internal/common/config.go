package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Render   RenderConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	LocalDSN         string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// UseLocal reports whether the local sqlite store is configured instead of Postgres.
func (d DatabaseConfig) UseLocal() bool {
	return d.DSN == "" && d.LocalDSN != ""
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// RenderConfig holds slip rendering configuration
type RenderConfig struct {
	FetchTimeout time.Duration
	Workers      int
	QueueSize    int
	JobTimeout   time.Duration
}

// IngestConfig holds the drop-folder ingest configuration
type IngestConfig struct {
	BankID    string
	WatchDir  string
	ExportDir string
	Debounce  time.Duration
}

// Enabled reports whether a drop folder is configured.
func (i IngestConfig) Enabled() bool {
	return i.WatchDir != ""
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			LocalDSN:         getEnv("LOCAL_DB", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Render: RenderConfig{
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 20*time.Second),
			Workers:      getEnvAsInt("RENDER_WORKERS", 4),
			QueueSize:    getEnvAsInt("RENDER_QUEUE_SIZE", 256),
			JobTimeout:   getEnvAsDuration("RENDER_TIMEOUT", time.Minute),
		},
		Ingest: IngestConfig{
			BankID:    getEnv("INGEST_BANK_ID", ""),
			WatchDir:  getEnv("WATCH_DIR", ""),
			ExportDir: getEnv("EXPORT_DIR", "exports"),
			Debounce:  getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.LocalDSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or LOCAL_DB is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Render.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "RENDER_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Ingest.Enabled() && c.Ingest.BankID == "" {
		return NewAppError("CONFIG_ERROR", "INGEST_BANK_ID is required when WATCH_DIR is set", ErrInvalidInput)
	}
	return nil
}
