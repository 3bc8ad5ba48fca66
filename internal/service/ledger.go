package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/repository"
)

// Bet write operations, used as audit and metric labels.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpDeleteAll = "delete_all"
)

// LedgerService manages a user's wagers
type LedgerService struct {
	bets      repository.BetRepository
	validator *BetValidator
	audit     *logger.AuditLogger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(bets repository.BetRepository, audit *logger.AuditLogger) *LedgerService {
	return &LedgerService{
		bets:      bets,
		validator: NewBetValidator(),
		audit:     audit,
	}
}

// List returns the owner's bets, newest entry first
func (s *LedgerService) List(ctx context.Context, owner uuid.UUID) ([]models.RawBet, error) {
	bets, err := s.bets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

// Create records a new wager for the owner
func (s *LedgerService) Create(ctx context.Context, owner uuid.UUID, in models.BetInput) (*models.RawBet, error) {
	if err := s.validator.Check(&in); err != nil {
		return nil, err
	}

	bet := &models.RawBet{UserID: owner}
	in.Apply(bet)
	if err := s.bets.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	s.recordWrite(owner, bet.ID, OpCreate, bet.Outcome)
	return bet, nil
}

// Update replaces the editable fields of one of the owner's wagers
func (s *LedgerService) Update(ctx context.Context, owner uuid.UUID, id string, in models.BetInput) (*models.RawBet, error) {
	if err := s.validator.Check(&in); err != nil {
		return nil, err
	}

	bet, err := s.bets.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	in.Apply(bet)
	if err := s.bets.Update(ctx, bet); err != nil {
		return nil, err
	}

	s.recordWrite(owner, bet.ID, OpUpdate, bet.Outcome)
	return bet, nil
}

// Delete removes one of the owner's wagers
func (s *LedgerService) Delete(ctx context.Context, owner uuid.UUID, id string) error {
	if err := s.bets.Delete(ctx, owner, id); err != nil {
		return err
	}
	s.recordWrite(owner, id, OpDelete, "")
	return nil
}

// DeleteAll removes every wager the owner has recorded
func (s *LedgerService) DeleteAll(ctx context.Context, owner uuid.UUID) (int64, error) {
	removed, err := s.bets.DeleteAllByOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to clear ledger: %w", err)
	}
	metrics.RecordBetWrite(OpDeleteAll)
	s.audit.LogLedgerCleared(owner.String(), removed)
	return removed, nil
}

func (s *LedgerService) recordWrite(owner uuid.UUID, betID, op string, outcome models.Outcome) {
	metrics.RecordBetWrite(op)
	s.audit.LogBetWrite(owner.String(), betID, op, string(outcome))
}
