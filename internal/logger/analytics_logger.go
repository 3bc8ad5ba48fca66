// Package logger provides analytics-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalyticsLogger provides dedicated logging for summary builds and the
// stats snapshot refresh.
type AnalyticsLogger struct {
	*logrus.Entry
}

// NewAnalyticsLogger creates a new analytics logger.
func NewAnalyticsLogger(baseLogger *logrus.Logger) *AnalyticsLogger {
	return &AnalyticsLogger{
		Entry: baseLogger.WithField("component", "analytics"),
	}
}

// LogSummaryBuilt logs a completed summary.
func (al *AnalyticsLogger) LogSummaryBuilt(userID, scope string, totalBets, sampleSize, issues int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"user_id":     userID,
		"scope":       scope,
		"total_bets":  totalBets,
		"sample_size": sampleSize,
		"issues":      issues,
		"duration_ms": durationMs,
	}).Debug("Summary built")
}

// LogDataIssues logs data-quality warnings found in a ledger.
func (al *AnalyticsLogger) LogDataIssues(userID string, issues []string) {
	if len(issues) == 0 {
		return
	}
	al.WithFields(logrus.Fields{
		"user_id": userID,
		"issues":  issues,
	}).Info("Ledger data issues detected")
}

// LogStatsRefresh logs a completed stats snapshot refresh run.
func (al *AnalyticsLogger) LogStatsRefresh(usersRefreshed, usersFailed int, durationMs float64) {
	entry := al.WithFields(logrus.Fields{
		"users_refreshed": usersRefreshed,
		"users_failed":    usersFailed,
		"duration_ms":     durationMs,
	})
	if usersFailed > 0 {
		entry.Warn("Stats refresh completed with failures")
		return
	}
	entry.Info("Stats refresh completed")
}
