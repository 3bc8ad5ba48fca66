package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/repository"
)

// RefreshResult reports the outcome of a stats refresh run
type RefreshResult struct {
	Refreshed int
	Failed    int
	Duration  time.Duration
}

func (r RefreshResult) String() string {
	return fmt.Sprintf("refreshed=%d failed=%d duration=%s", r.Refreshed, r.Failed, r.Duration.Round(time.Millisecond))
}

// StatsRefresher recomputes every user's profile statistics and stores them
// on the user record
type StatsRefresher struct {
	users  repository.UserRepository
	bets   repository.BetRepository
	logger *logger.AnalyticsLogger
}

// NewStatsRefresher creates a new stats refresher
func NewStatsRefresher(users repository.UserRepository, bets repository.BetRepository, log *logger.AnalyticsLogger) *StatsRefresher {
	return &StatsRefresher{users: users, bets: bets, logger: log}
}

// RefreshAll refreshes every user. A failure for one user is logged and
// counted without stopping the run; the run itself fails only when the user
// list cannot be read or the context is cancelled.
func (r *StatsRefresher) RefreshAll(ctx context.Context) (RefreshResult, error) {
	start := time.Now()

	users, err := r.users.List(ctx)
	if err != nil {
		metrics.RecordStatsRefreshFailure()
		return RefreshResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	var result RefreshResult
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			metrics.RecordStatsRefreshFailure()
			return result, err
		}
		if err := r.RefreshUser(ctx, user.ID); err != nil {
			result.Failed++
			r.logger.WithFields(logrus.Fields{
				"user_id":  user.ID,
				"username": user.Username,
			}).WithError(err).Error("Failed to refresh user stats")
			continue
		}
		result.Refreshed++
	}

	result.Duration = time.Since(start)
	metrics.RecordStatsRefresh(result.Refreshed, result.Failed, float64(time.Now().Unix()))
	r.logger.LogStatsRefresh(result.Refreshed, result.Failed, float64(result.Duration.Milliseconds()))
	return result, nil
}

// RefreshUser recomputes and stores one user's statistics
func (r *StatsRefresher) RefreshUser(ctx context.Context, id uuid.UUID) error {
	bets, err := r.bets.ListByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load bets: %w", err)
	}
	stats := analytics.ComputeUserStats(bets)
	if err := r.users.SaveStatsSnapshot(ctx, id, stats.Snapshot()); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}
