package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/betting-tracker/internal/database"
	"github.com/yourusername/betting-tracker/internal/models"
)

const betColumns = `id, user_id, date, sport, event, bet_type, odds, closing_odds, stake, payout,
		       outcome, profit_loss, description, note, sportsbook, created_at, updated_at`

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// Create inserts a new bet, assigning an ID and timestamps when unset
func (b *PostgresBetRepository) Create(ctx context.Context, bet *models.RawBet) error {
	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	bet.CreatedAt = now
	bet.UpdatedAt = now

	query := `
		INSERT INTO bets (` + betColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := b.db.Exec(ctx, query,
		bet.ID, bet.UserID, string(bet.Date), bet.Sport, bet.Event, bet.BetType, bet.Odds, bet.ClosingOdds,
		bet.Stake, bet.Payout, bet.Outcome, bet.ProfitLoss, bet.Description, bet.Note, bet.Sportsbook,
		bet.CreatedAt, bet.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's bets
func (b *PostgresBetRepository) GetByID(ctx context.Context, owner uuid.UUID, id string) (*models.RawBet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrInvalidID
	}

	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1 AND user_id = $2`

	bet, err := scanBet(b.db.QueryRow(ctx, query, id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// ListByOwner retrieves all of the owner's bets, newest entry first
func (b *PostgresBetRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.RawBet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := b.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	bets := []models.RawBet{}
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, *bet)
	}

	return bets, rows.Err()
}

// Update replaces the editable fields of an existing bet
func (b *PostgresBetRepository) Update(ctx context.Context, bet *models.RawBet) error {
	if _, err := uuid.Parse(bet.ID); err != nil {
		return models.ErrInvalidID
	}
	bet.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE bets
		SET date = $3, sport = $4, event = $5, bet_type = $6, odds = $7, closing_odds = $8,
		    stake = $9, payout = $10, outcome = $11, profit_loss = $12, description = $13,
		    note = $14, sportsbook = $15, updated_at = $16
		WHERE id = $1 AND user_id = $2
		RETURNING created_at
	`

	err := b.db.QueryRow(ctx, query,
		bet.ID, bet.UserID, string(bet.Date), bet.Sport, bet.Event, bet.BetType, bet.Odds, bet.ClosingOdds,
		bet.Stake, bet.Payout, bet.Outcome, bet.ProfitLoss, bet.Description, bet.Note, bet.Sportsbook,
		bet.UpdatedAt,
	).Scan(&bet.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}

	return nil
}

// Delete removes one of the owner's bets
func (b *PostgresBetRepository) Delete(ctx context.Context, owner uuid.UUID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrInvalidID
	}

	tag, err := b.db.Exec(ctx, `DELETE FROM bets WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteAllByOwner removes every bet the owner has recorded
func (b *PostgresBetRepository) DeleteAllByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	tag, err := b.db.Exec(ctx, `DELETE FROM bets WHERE user_id = $1`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bets: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanBet(row pgx.Row) (*models.RawBet, error) {
	bet := &models.RawBet{}
	err := row.Scan(
		&bet.ID, &bet.UserID, &bet.Date, &bet.Sport, &bet.Event, &bet.BetType, &bet.Odds, &bet.ClosingOdds,
		&bet.Stake, &bet.Payout, &bet.Outcome, &bet.ProfitLoss, &bet.Description, &bet.Note, &bet.Sportsbook,
		&bet.CreatedAt, &bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bet, nil
}
