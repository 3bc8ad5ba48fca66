package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/repository"
)

// Profile is the signed-in user's account view
type Profile struct {
	ID                  uuid.UUID           `json:"id"`
	Username            string              `json:"username"`
	Role                models.Role         `json:"role"`
	Stats               analytics.UserStats `json:"stats"`
	NarrativeConfigured bool                `json:"narrativeConfigured"`
}

// UserListing is one row of the admin user list
type UserListing struct {
	ID             uuid.UUID             `json:"id"`
	Username       string                `json:"username"`
	Role           models.Role           `json:"role"`
	Stats          *models.StatsSnapshot `json:"stats"`
	StatsUpdatedAt *time.Time            `json:"statsUpdatedAt"`
}

// ProfileService serves account views
type ProfileService struct {
	users               repository.UserRepository
	bets                repository.BetRepository
	narrativeConfigured bool
}

// NewProfileService creates a new profile service
func NewProfileService(users repository.UserRepository, bets repository.BetRepository, narrativeConfigured bool) *ProfileService {
	return &ProfileService{users: users, bets: bets, narrativeConfigured: narrativeConfigured}
}

// Me returns the user's profile with statistics computed from the live ledger
func (s *ProfileService) Me(ctx context.Context, id uuid.UUID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bets, err := s.bets.ListByOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}
	return &Profile{
		ID:                  user.ID,
		Username:            user.Username,
		Role:                user.Role,
		Stats:               analytics.ComputeUserStats(bets),
		NarrativeConfigured: s.narrativeConfigured,
	}, nil
}

// List returns every account with its last persisted stats snapshot
func (s *ProfileService) List(ctx context.Context) ([]UserListing, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]UserListing, 0, len(users))
	for _, u := range users {
		out = append(out, UserListing{
			ID:             u.ID,
			Username:       u.Username,
			Role:           u.Role,
			Stats:          u.Stats,
			StatsUpdatedAt: u.StatsUpdatedAt,
		})
	}
	return out, nil
}
