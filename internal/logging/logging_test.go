package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogSmileFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogSmile(logger, 0.5, 1.21, 0.1, 0.01, 0.005, 0.02, 0.01)

	entry := decode(t, &buf)
	if entry["event"] != "smile" || entry["tenor"] != 0.5 || entry["bb10"] != 0.01 {
		t.Errorf("entry = %v", entry)
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestLogConsistencyWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogConsistencyWarning(logger, 1, []float64{1.1, 1.0, 1.2})

	entry := decode(t, &buf)
	if entry["level"] != "warn" || entry["event"] != "consistency" {
		t.Errorf("entry = %v", entry)
	}
	if strikes, ok := entry["strikes"].([]interface{}); !ok || len(strikes) != 3 {
		t.Errorf("strikes = %v", entry["strikes"])
	}
}

func TestLogCalibrationFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogCalibrationFailure(logger, 0.25, errors.New("root not bracketed"))

	entry := decode(t, &buf)
	if entry["level"] != "error" || entry["error"] != "root not bracketed" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLogConfig()
	cfg.Level = "warn"
	logger := newLogger(cfg, &buf)

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	logger.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Error("warn not logged at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTenor(zerolog.New(&buf), 0.75)
	ctx := WithLogger(context.Background(), logger)

	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("from context")
	if entry := decode(t, &buf); entry["tenor"] != 0.75 {
		t.Errorf("entry = %v", entry)
	}

	bgLogger := FromContext(context.Background())
	bgLogger.Info().Msg("dropped")
}
