// Package utils provides utility functions for the college cutoff predictor.
package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance. Use GetLogger and SetLogger rather
// than touching it directly.
var (
	Logger   *zap.Logger
	loggerMu sync.Mutex
)

// ParseLevel maps a config string to a zap level, falling back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes the global logger.
func InitLogger(level string) error {
	logger, err := buildLogger(level)
	if err != nil {
		return err
	}

	loggerMu.Lock()
	Logger = logger
	loggerMu.Unlock()

	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zapLevel := ParseLevel(level)

	// JSON output on Lambda and in prod, console output everywhere else
	structured := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" || strings.EqualFold(os.Getenv("STAGE"), "prod")

	var config zap.Config
	if structured {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// CLI output goes to stdout, keep logs off it
		config.OutputPaths = []string{"stderr"}
	}

	return config.Build()
}

// SetLogger replaces the global logger, e.g. with zap.NewNop() in tests.
// A nil logger makes the next GetLogger initialize a default one.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	Logger = l
	loggerMu.Unlock()
}

// GetLogger returns the global logger, initializing an info logger on first
// use. If that fails a no-op logger is installed.
func GetLogger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if Logger == nil {
		logger, err := buildLogger("info")
		if err != nil {
			logger = zap.NewNop()
		}
		Logger = logger
	}
	return Logger
}

// Sync flushes any buffered log entries.
func Sync() {
	loggerMu.Lock()
	logger := Logger
	loggerMu.Unlock()

	if logger != nil {
		_ = logger.Sync()
	}
}

// Common field constructors
var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Float64  = zap.Float64
	Error    = zap.Error
	Duration = zap.Duration
)
