// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "fxvol", "logs", "fxvol.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, console io.Writer) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithTenor adds a tenor to the logger context.
func WithTenor(logger zerolog.Logger, tenor float64) zerolog.Logger {
	return logger.With().Float64("tenor", tenor).Logger()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogSmile logs an interpolated delta-space smile.
func LogSmile(logger zerolog.Logger, tenor, forward, atm, rr25, bb25, rr10, bb10 float64) {
	logger.Info().
		Str("event", "smile").
		Float64("tenor", tenor).
		Float64("forward", forward).
		Float64("atm", atm).
		Float64("rr25", rr25).
		Float64("bb25", bb25).
		Float64("rr10", rr10).
		Float64("bb10", bb10).
		Msg("Smile interpolated")
}

// LogCalibrationFailure logs a smile that could not be calibrated.
func LogCalibrationFailure(logger zerolog.Logger, tenor float64, err error) {
	logger.Error().
		Str("event", "calibration").
		Float64("tenor", tenor).
		Err(err).
		Msg("Smile calibration failed")
}

// LogConsistencyWarning logs a calibrated smile whose strikes are not ascending.
func LogConsistencyWarning(logger zerolog.Logger, tenor float64, strikes []float64) {
	logger.Warn().
		Str("event", "consistency").
		Float64("tenor", tenor).
		Floats64("strikes", strikes).
		Msg("Calibrated strikes not ascending; quote set is inconsistent")
}

// LogQuoteImport logs a quote snapshot import.
func LogQuoteImport(logger zerolog.Logger, name, source string, points int, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "quote_import").
		Str("name", name).
		Str("source", source).
		Int("points", points).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("Quote import failed")
	} else {
		event.Msg("Quote import completed")
	}
}
