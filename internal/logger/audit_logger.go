// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogServiceStart records the engine policy a process started with.
func (al *AuditLogger) LogServiceStart(service, environment string, maxStakeFraction float64, strictOdds bool) {
	al.WithFields(logrus.Fields{
		"service":            service,
		"environment":        environment,
		"max_stake_fraction": maxStakeFraction,
		"strict_odds":        strictOdds,
	}).Info("Service started")
}

// LogSuggestionRefresh records a parlay suggestion refresh.
func (al *AuditLogger) LogSuggestionRefresh(trigger string, poolSize int, refreshedAt time.Time, err error) {
	fields := logrus.Fields{
		"trigger":      trigger,
		"pool_size":    poolSize,
		"refreshed_at": refreshedAt.Unix(),
	}
	if err != nil {
		al.WithFields(fields).WithError(err).Error("Parlay suggestion refresh failed")
		return
	}
	al.WithFields(fields).Info("Parlay suggestions refreshed")
}

// LogServiceStop records a shutdown and its reason.
func (al *AuditLogger) LogServiceStop(service, reason string) {
	al.WithFields(logrus.Fields{
		"service": service,
		"reason":  reason,
	}).Info("Service stopped")
}
