// Package analytics turns a user's raw wager records into normalized metrics,
// breakdowns, risk statistics and the summary handed to the narrative generator.
//
// Every function in this package is pure: no I/O, no retained state, safe for
// concurrent use.
package analytics

import "errors"

// ErrInvalidInput marks caller contract violations such as an unknown scope or
// an unparseable filter date. Malformed bet content never produces an error.
var ErrInvalidInput = errors.New("invalid input")
