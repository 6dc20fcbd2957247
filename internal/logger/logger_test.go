package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func productionLogger(t *testing.T, buf *bytes.Buffer, level string) *zap.Logger {
	t.Helper()
	logger, err := build(Options{Env: "production", Service: "storefront", Level: level}, zapcore.AddSync(buf))
	require.NoError(t, err)
	return logger
}

// Feature: storefront-ops, Property 1: Production logs are structured JSON
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every production entry is JSON with level, timestamp, message and service", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := productionLogger(t, &buf, "debug")

			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			default:
				logger.Error(message)
			}
			logger.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			for _, key := range []string{"level", "timestamp", "msg", "service", "env"} {
				if _, ok := entry[key]; !ok {
					t.Logf("FAIL: missing %q in %v", key, entry)
					return false
				}
			}

			return entry["msg"] == message && entry["level"] == level && entry["service"] == "storefront"
		},
		gen.AlphaString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront-ops, Property 2: Entries below the configured level are dropped
func TestProperty_LevelFiltering(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error"}
	properties := gopter.NewProperties(nil)

	properties.Property("an entry is written iff its level is at or above the configured level", prop.ForAll(
		func(configured, emitted int) bool {
			var buf bytes.Buffer
			logger := productionLogger(t, &buf, levels[configured])

			switch levels[emitted] {
			case "debug":
				logger.Debug("entry")
			case "info":
				logger.Info("entry")
			case "warn":
				logger.Warn("entry")
			default:
				logger.Error("entry")
			}
			logger.Sync()

			written := buf.Len() > 0
			return written == (emitted >= configured)
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBuild_ProductionDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := productionLogger(t, &buf, "")

	logger.Debug("hidden")
	logger.Info("shown")
	logger.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestBuild_DevelopmentUsesConsoleEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger, err := build(Options{Env: "development"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("console entry", zap.String("order_number", "ORD-1-1"))
	logger.Sync()

	out := buf.String()
	assert.Contains(t, out, "console entry")
	assert.Contains(t, out, "ORD-1-1")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "development output should not be JSON")
}

func TestBuild_ErrorLogsCarryStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := productionLogger(t, &buf, "")

	logger.Error("persist failed", zap.String("error", "connection refused"))
	logger.Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connection refused", entry["error"])
	assert.Contains(t, entry, "stacktrace")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Env: "production", Level: "loud"})
	assert.Error(t, err)
}
