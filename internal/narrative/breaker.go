package narrative

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BreakerState is the state of the upstream circuit breaker
type BreakerState int

const (
	// BreakerClosed lets every request through
	BreakerClosed BreakerState = iota
	// BreakerHalfOpen lets one trial request through after the cooldown
	BreakerHalfOpen
	// BreakerOpen rejects requests without calling upstream
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	case BreakerOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// breaker stops calling a failing model endpoint. It opens after maxFailures
// failures with no more than window between consecutive ones, and stays open
// for cooldown. A nil breaker always allows.
type breaker struct {
	maxFailures int
	window      time.Duration
	cooldown    time.Duration
	logger      *logrus.Entry
	now         func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	openedAt    time.Time
	trial       bool
}

func newBreaker(maxFailures int, window, cooldown time.Duration, logger *logrus.Entry) *breaker {
	if maxFailures <= 0 {
		return nil
	}
	return &breaker{
		maxFailures: maxFailures,
		window:      window,
		cooldown:    cooldown,
		logger:      logger,
		now:         time.Now,
	}
}

// Allow reports whether a request may be sent
func (b *breaker) Allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.transition(BreakerHalfOpen, "cooldown elapsed")
		b.trial = true
		return true
	case BreakerHalfOpen:
		if b.trial {
			return false
		}
		b.trial = true
		return true
	default:
		return true
	}
}

// RecordFailure counts a failed request and opens the circuit at the threshold
func (b *breaker) RecordFailure(err error) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == BreakerHalfOpen {
		b.trial = false
		b.openedAt = now
		b.transition(BreakerOpen, "trial request failed")
		return
	}

	if now.Sub(b.lastFailure) > b.window {
		b.failures = 0
	}
	b.failures++
	b.lastFailure = now

	if b.state == BreakerClosed && b.failures >= b.maxFailures {
		b.openedAt = now
		b.logger.WithFields(logrus.Fields{
			"failure_count": b.failures,
			"cooldown":      b.cooldown.String(),
		}).WithError(err).Warn("Narrative upstream failing repeatedly")
		b.transition(BreakerOpen, "failure threshold reached")
	}
}

// RecordSuccess closes the circuit
func (b *breaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.trial = false
	if b.state != BreakerClosed {
		b.transition(BreakerClosed, "request succeeded")
	}
}

// State returns the current state
func (b *breaker) State() BreakerState {
	if b == nil {
		return BreakerClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition assumes b.mu is held
func (b *breaker) transition(to BreakerState, reason string) {
	from := b.state
	b.state = to
	b.logger.WithFields(logrus.Fields{
		"old_state": from.String(),
		"new_state": to.String(),
		"reason":    reason,
	}).Info("Narrative circuit breaker state changed")
}
