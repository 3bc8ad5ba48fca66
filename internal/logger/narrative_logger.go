// Package logger provides narrative-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// NarrativeLogger provides dedicated logging for analysis requests and the
// language-model calls behind them.
type NarrativeLogger struct {
	*logrus.Entry
}

// NewNarrativeLogger creates a new narrative logger.
func NewNarrativeLogger(baseLogger *logrus.Logger) *NarrativeLogger {
	return &NarrativeLogger{
		Entry: baseLogger.WithField("component", "narrative"),
	}
}

// LogAnalysisRequest logs an incoming question against a user's ledger.
func (nl *NarrativeLogger) LogAnalysisRequest(userID, scope string, betsInScope, historyMessages int, transport string) {
	nl.WithFields(logrus.Fields{
		"user_id":          userID,
		"scope":            scope,
		"bets_in_scope":    betsInScope,
		"history_messages": historyMessages,
		"transport":        transport,
	}).Info("Analysis requested")
}

// LogCompletion logs a successful model reply.
func (nl *NarrativeLogger) LogCompletion(model string, latencyMs float64, answerChars int, structured bool) {
	nl.WithFields(logrus.Fields{
		"model":        model,
		"latency_ms":   latencyMs,
		"answer_chars": answerChars,
		"structured":   structured,
	}).Info("Narrative completion received")
}

// LogUpstreamFailure logs a failed model call.
func (nl *NarrativeLogger) LogUpstreamFailure(model string, statusCode int, err error) {
	nl.WithFields(logrus.Fields{
		"model":       model,
		"status_code": statusCode,
	}).WithError(err).Error("Narrative completion failed")
}
