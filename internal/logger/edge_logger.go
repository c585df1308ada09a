// Package logger provides edge-engine logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EdgeLogger provides dedicated logging for CLV and parlay operations.
type EdgeLogger struct {
	*logrus.Entry
}

// NewEdgeLogger creates a new edge logger.
func NewEdgeLogger(baseLogger *logrus.Logger) *EdgeLogger {
	return &EdgeLogger{
		Entry: baseLogger.WithField("component", "edge"),
	}
}

// LogCLVCalculation logs a single CLV evaluation at debug level.
func (el *EdgeLogger) LogCLVCalculation(entryOdds, closeOdds, clvPercent, evPercent, confidence, recommendedStake float64) {
	el.WithFields(logrus.Fields{
		"entry_odds":        entryOdds,
		"close_odds":        closeOdds,
		"clv_percent":       clvPercent,
		"ev_percent":        evPercent,
		"confidence":        confidence,
		"recommended_stake": recommendedStake,
	}).Debug("CLV calculated")
}

// LogBatchCalculation logs a completed batch evaluation.
func (el *EdgeLogger) LogBatchCalculation(size, workers int, durationMs float64) {
	el.WithFields(logrus.Fields{
		"batch_size":  size,
		"workers":     workers,
		"duration_ms": durationMs,
	}).Info("CLV batch completed")
}

// LogInvalidOdds logs odds rejected by strict validation.
func (el *EdgeLogger) LogInvalidOdds(entryOdds, closeOdds float64, err error) {
	el.WithFields(logrus.Fields{
		"entry_odds": entryOdds,
		"close_odds": closeOdds,
		"error":      err.Error(),
	}).Warn("Invalid odds rejected")
}

// LogSuspiciousEdge logs a stored edge whose normalized value looks like a double conversion.
func (el *EdgeLogger) LogSuspiciousEdge(source string, raw interface{}, normalized float64) {
	el.WithFields(logrus.Fields{
		"source":     source,
		"raw_edge":   raw,
		"normalized": normalized,
	}).Warn("Suspicious edge value")
}

// LogParlaySelection logs the outcome of a parlay selection pass.
func (el *EdgeLogger) LogParlaySelection(poolSize int, conservativeID, aggressiveID string) {
	el.WithFields(logrus.Fields{
		"pool_size":       poolSize,
		"conservative_id": conservativeID,
		"aggressive_id":   aggressiveID,
	}).Info("Parlay selection completed")
}
