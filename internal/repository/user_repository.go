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

const userColumns = `id, username, password_hash, role, stats, stats_updated_at, created_at, updated_at`

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *database.DB
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *database.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

// Create inserts a new user. A taken username yields models.ErrDuplicateKey.
func (u *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := u.db.Exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (u *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by exact username
func (u *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (u *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(u.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUsername renames a user
func (u *PostgresUserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	tag, err := u.db.Exec(ctx,
		`UPDATE users SET username = $2, updated_at = NOW() WHERE id = $1`,
		id, username,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List retrieves every user ordered by username
func (u *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := u.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SaveStatsSnapshot stores the latest computed profile statistics
func (u *PostgresUserRepository) SaveStatsSnapshot(ctx context.Context, id uuid.UUID, stats *models.StatsSnapshot) error {
	tag, err := u.db.Exec(ctx,
		`UPDATE users SET stats = $2, stats_updated_at = NOW() WHERE id = $1`,
		id, stats,
	)
	if err != nil {
		return fmt.Errorf("failed to save stats snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.Stats, &user.StatsUpdatedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
