// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Login results recorded by LogLogin.
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
	LoginThrottled = "throttled"
)

// AuditLogger provides dedicated audit trail logging for account and ledger
// changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRegistration logs a new account.
func (al *AuditLogger) LogRegistration(userID, username, role string) {
	al.WithFields(logrus.Fields{
		"user_id":  userID,
		"username": username,
		"role":     role,
	}).Info("User registered")
}

// LogLogin logs a login attempt and its result.
func (al *AuditLogger) LogLogin(username, result, remoteAddr string) {
	entry := al.WithFields(logrus.Fields{
		"username":    username,
		"result":      result,
		"remote_addr": remoteAddr,
	})
	if result == LoginSucceeded {
		entry.Info("Login attempt")
		return
	}
	entry.Warn("Login attempt")
}

// LogUsernameChange logs a username update.
func (al *AuditLogger) LogUsernameChange(userID, oldUsername, newUsername string) {
	al.WithFields(logrus.Fields{
		"user_id":      userID,
		"old_username": oldUsername,
		"new_username": newUsername,
	}).Info("Username changed")
}

// LogBetWrite logs a create, update or delete of one wager.
func (al *AuditLogger) LogBetWrite(userID, betID, operation string, outcome string) {
	al.WithFields(logrus.Fields{
		"user_id":   userID,
		"bet_id":    betID,
		"operation": operation,
		"outcome":   outcome,
	}).Info("Bet recorded")
}

// LogLedgerCleared logs removal of every wager a user owns.
func (al *AuditLogger) LogLedgerCleared(userID string, removed int64) {
	al.WithFields(logrus.Fields{
		"user_id": userID,
		"removed": removed,
	}).Warn("Ledger cleared")
}
