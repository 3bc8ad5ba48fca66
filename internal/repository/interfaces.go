package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/models"
)

// BetRepository defines the interface for wager data access. Every read and
// write is scoped to the owning user; a bet owned by someone else is reported
// as models.ErrNotFound.
type BetRepository interface {
	Create(ctx context.Context, bet *models.RawBet) error
	GetByID(ctx context.Context, owner uuid.UUID, id string) (*models.RawBet, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.RawBet, error)
	Update(ctx context.Context, bet *models.RawBet) error
	Delete(ctx context.Context, owner uuid.UUID, id string) error
	DeleteAllByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	List(ctx context.Context) ([]*models.User, error)
	SaveStatsSnapshot(ctx context.Context, id uuid.UUID, stats *models.StatsSnapshot) error
}
