// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the API server will bind to.
	ServerHost string
	// ServerPort is the port number the API server will listen on.
	ServerPort int

	// VaultDriver is the database driver backing the mapping vault ("sqlite", "postgres", "mysql").
	VaultDriver string
	// VaultDSN is the connection string for the vault database. For sqlite this is a file path.
	VaultDSN string
	// VaultPassword protects the vault encryption key. Empty means a random key
	// exported to VaultKeyFile.
	VaultPassword string
	// VaultKeyFile is where a randomly generated vault key is exported to, and
	// loaded from on later runs.
	VaultKeyFile string
	// DBMaxOpenConnections is the maximum number of open connections to the vault database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// Mode selects the anonymization strategy ("fake", "fpe", "hmac", "hybrid").
	Mode string
	// Profile selects a named preset; when set it overrides Mode and related flags.
	Profile string
	// Seed is a hex-encoded master seed. Empty means a random seed per run.
	Seed string
	// Columns restricts processing to a comma-separated list of column names.
	Columns string
	// StrictMode aborts a run on the first cell error instead of passing values through.
	StrictMode bool
	// PreserveDomains maps each email domain to one stable pseudonym shared by
	// every column instead of a per-column fake domain; real domains are still replaced.
	PreserveDomains bool

	// Workers is the number of parallel row-batch workers in the tabular pipeline.
	Workers int
	// ChunkSize is the number of rows per batch in the tabular pipeline.
	ChunkSize int
	// SampleSize is the maximum number of cells sampled per column for type detection.
	SampleSize int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether IP rate limiting for API endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSKeyURI is the gocloud.dev keeper URI used to wrap exported vault key files.
	// Empty disables key wrapping.
	KMSKeyURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Vault configuration
		VaultDriver:          env.GetString("VAULT_DRIVER", "sqlite"),
		VaultDSN:             env.GetString("VAULT_DSN", "anonymizer_vault.db"),
		VaultPassword:        env.GetString("VAULT_PASSWORD", ""),
		VaultKeyFile:         env.GetString("VAULT_KEY_FILE", "anonymizer_vault.key"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Anonymization defaults
		Mode:            env.GetString("ANONYMIZER_MODE", "hybrid"),
		Profile:         env.GetString("ANONYMIZER_PROFILE", ""),
		Seed:            env.GetString("ANONYMIZER_SEED", ""),
		Columns:         env.GetString("ANONYMIZER_COLUMNS", ""),
		StrictMode:      env.GetBool("ANONYMIZER_STRICT", false),
		PreserveDomains: env.GetBool("ANONYMIZER_PRESERVE_DOMAINS", false),

		// Tabular pipeline
		Workers:    env.GetInt("WORKERS", 4),
		ChunkSize:  env.GetInt("CHUNK_SIZE", 1000),
		SampleSize: env.GetInt("SAMPLE_SIZE", 1000),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting (IP-based)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "anonymizer"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// KMS configuration
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
