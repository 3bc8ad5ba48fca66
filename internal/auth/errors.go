// Package auth handles account registration, login and session tokens.
package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrThrottled is returned when a client exceeded the login attempt budget.
	ErrThrottled = errors.New("too many login attempts")
	// ErrInvalidToken is returned for a missing, expired or forged session token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRegistrationClosed is returned when self-service signup is disabled.
	ErrRegistrationClosed = errors.New("registration is disabled")
)
