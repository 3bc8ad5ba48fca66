package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/betting-tracker/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Bet  BetRepository
	User UserRepository
}

// NewRepositories creates the PostgreSQL-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Bet:  NewPostgresBetRepository(db),
		User: NewPostgresUserRepository(db),
	}, nil
}

// NewMemoryRepositories creates process-local repositories sharing one store
func NewMemoryRepositories() *Repositories {
	store := newMemoryStore()
	return &Repositories{
		Bet:  &MemoryBetRepository{store: store},
		User: &MemoryUserRepository{store: store},
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
