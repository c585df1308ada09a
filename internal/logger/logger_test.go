package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("debug", "development", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = New("bogus", "production", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestEdgeLoggerCLVCalculation(t *testing.T) {
	log, buf := setupTestLogger()
	edgeLogger := NewEdgeLogger(log)

	edgeLogger.LogCLVCalculation(2.2, 2.0, 10, 10, 78, 0.05)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "edge", logEntry["component"])
	assert.Equal(t, "debug", logEntry["level"])
	assert.Equal(t, 2.2, logEntry["entry_odds"])
	assert.Equal(t, float64(78), logEntry["confidence"])
}

func TestEdgeLoggerCLVCalculationSuppressedAtInfo(t *testing.T) {
	log, buf := setupTestLogger()
	log.SetLevel(logrus.InfoLevel)

	NewEdgeLogger(log).LogCLVCalculation(2.2, 2.0, 10, 10, 78, 0.05)

	assert.Zero(t, buf.Len())
}

func TestEdgeLoggerInvalidOdds(t *testing.T) {
	log, buf := setupTestLogger()
	edgeLogger := NewEdgeLogger(log)

	edgeLogger.LogInvalidOdds(0, 2.0, errors.New("invalid odds"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "invalid odds", logEntry["error"])
}

func TestEdgeLoggerSuspiciousEdge(t *testing.T) {
	log, buf := setupTestLogger()
	edgeLogger := NewEdgeLogger(log)

	edgeLogger.LogSuspiciousEdge("parlay:p-17", "1520", 152)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "parlay:p-17", logEntry["source"])
	assert.Equal(t, "1520", logEntry["raw_edge"])
	assert.Equal(t, float64(152), logEntry["normalized"])
}

func TestEdgeLoggerParlaySelection(t *testing.T) {
	log, buf := setupTestLogger()
	edgeLogger := NewEdgeLogger(log)

	edgeLogger.LogParlaySelection(12, "p-1", "")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(12), logEntry["pool_size"])
	assert.Equal(t, "p-1", logEntry["conservative_id"])
	assert.Equal(t, "", logEntry["aggressive_id"])
}

func TestEdgeLoggerBatch(t *testing.T) {
	log, buf := setupTestLogger()

	NewEdgeLogger(log).LogBatchCalculation(250, 4, 3.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(250), logEntry["batch_size"])
	assert.Equal(t, float64(4), logEntry["workers"])
}

func TestAuditLoggerServiceLifecycle(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogServiceStart("edge-api", "staging", 0.05, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "edge-api", logEntry["service"])
	assert.Equal(t, true, logEntry["strict_odds"])

	buf.Reset()
	auditLogger.LogServiceStop("edge-api", "signal")

	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "signal", logEntry["reason"])
}

func TestAuditLoggerSuggestionRefresh(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)
	now := time.Unix(1700000000, 0)

	auditLogger.LogSuggestionRefresh("cron", 40, now, nil)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, float64(1700000000), logEntry["refreshed_at"])

	buf.Reset()
	auditLogger.LogSuggestionRefresh("cron", 0, now, errors.New("db down"))

	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "db down", logEntry["error"])
}
