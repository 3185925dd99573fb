// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cutoff sources
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Config holds all configuration values for the application.
type Config struct {
	// Cutoff source
	CutoffSource   string
	CutoffCSVPath  string
	WatchFile      bool
	ReloadInterval time.Duration

	// AWS
	AWSRegion string
	S3Bucket  string
	S3Key     string

	// Database
	DBHost        string
	DBPort        int
	DBName        string
	DBUser        string
	DBPassword    string
	DBCutoffTable string

	// Query defaults
	DefaultBuffer  float64
	LowerTolerance float64
	StatusOrder    string

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := LoadUnvalidated()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated reads the environment without validating, so callers can
// apply overrides (e.g. command-line flags) before calling Validate.
func LoadUnvalidated() *Config {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// Cutoff source
		CutoffSource:   strings.ToLower(getEnv("CUTOFF_SOURCE", SourceFile)),
		CutoffCSVPath:  getEnv("CUTOFF_CSV_PATH", "final_structured_cutoffs.csv"),
		WatchFile:      getEnvBool("WATCH_FILE", false),
		ReloadInterval: getEnvDuration("RELOAD_INTERVAL", 0),

		// AWS
		AWSRegion: getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:  getEnv("S3_BUCKET", ""),
		S3Key:     getEnv("S3_KEY", "final_structured_cutoffs.csv"),

		// Database
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnvInt("DB_PORT", 5432),
		DBName:        getEnv("DB_NAME", "cutoffs"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBCutoffTable: getEnv("DB_CUTOFF_TABLE", "cutoffs"),

		// Query defaults
		DefaultBuffer:  getEnvFloat("DEFAULT_BUFFER", 2.0),
		LowerTolerance: getEnvFloat("LOWER_TOLERANCE", 5.0),
		StatusOrder:    getEnv("STATUS_ORDER", "severity"),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.CutoffSource {
	case SourceFile:
		if c.CutoffCSVPath == "" {
			return fmt.Errorf("CUTOFF_CSV_PATH is required for source %q", c.CutoffSource)
		}
	case SourceS3:
		if c.S3Bucket == "" || c.S3Key == "" {
			return fmt.Errorf("S3_BUCKET and S3_KEY are required for source %q", c.CutoffSource)
		}
	case SourcePostgres:
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for source %q", c.CutoffSource)
		}
	default:
		return fmt.Errorf("unknown CUTOFF_SOURCE %q (want file, s3 or postgres)", c.CutoffSource)
	}

	if math.IsNaN(c.DefaultBuffer) || c.DefaultBuffer < 0 || c.DefaultBuffer > 10 {
		return fmt.Errorf("DEFAULT_BUFFER must be between 0 and 10, got %v", c.DefaultBuffer)
	}
	if math.IsNaN(c.LowerTolerance) || math.IsInf(c.LowerTolerance, 0) {
		return fmt.Errorf("LOWER_TOLERANCE must be a finite number, got %v", c.LowerTolerance)
	}
	if c.LowerTolerance < 0 {
		return fmt.Errorf("LOWER_TOLERANCE cannot be negative, got %v", c.LowerTolerance)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as float64 or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as bool or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves an environment variable as a duration or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
