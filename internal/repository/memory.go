package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/models"
)

// memoryStore backs the in-memory repositories. Values are copied on the way
// in and out so callers never share state with the store.
type memoryStore struct {
	mu    sync.RWMutex
	bets  map[string]models.RawBet
	users map[uuid.UUID]models.User
	seq   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bets:  map[string]models.RawBet{},
		users: map[uuid.UUID]models.User{},
	}
}

// now returns strictly increasing timestamps so insertion order is stable.
func (s *memoryStore) now() time.Time {
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq))
}

// MemoryBetRepository implements BetRepository in process memory
type MemoryBetRepository struct {
	store *memoryStore
}

// Create stores a new bet
func (r *MemoryBetRepository) Create(_ context.Context, bet *models.RawBet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	if _, exists := r.store.bets[bet.ID]; exists {
		return models.ErrDuplicateKey
	}
	now := r.store.now()
	bet.CreatedAt = now
	bet.UpdatedAt = now
	r.store.bets[bet.ID] = copyBet(*bet)
	return nil
}

// GetByID retrieves one of the owner's bets
func (r *MemoryBetRepository) GetByID(_ context.Context, owner uuid.UUID, id string) (*models.RawBet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrInvalidID
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	bet, ok := r.store.bets[id]
	if !ok || bet.UserID != owner {
		return nil, models.ErrNotFound
	}
	out := copyBet(bet)
	return &out, nil
}

// ListByOwner retrieves all of the owner's bets, newest entry first
func (r *MemoryBetRepository) ListByOwner(_ context.Context, owner uuid.UUID) ([]models.RawBet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	bets := []models.RawBet{}
	for _, bet := range r.store.bets {
		if bet.UserID == owner {
			bets = append(bets, copyBet(bet))
		}
	}
	sort.Slice(bets, func(i, j int) bool {
		if !bets[i].CreatedAt.Equal(bets[j].CreatedAt) {
			return bets[i].CreatedAt.After(bets[j].CreatedAt)
		}
		return bets[i].ID < bets[j].ID
	})
	return bets, nil
}

// Update replaces the editable fields of an existing bet
func (r *MemoryBetRepository) Update(_ context.Context, bet *models.RawBet) error {
	if _, err := uuid.Parse(bet.ID); err != nil {
		return models.ErrInvalidID
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.bets[bet.ID]
	if !ok || existing.UserID != bet.UserID {
		return models.ErrNotFound
	}
	bet.CreatedAt = existing.CreatedAt
	bet.UpdatedAt = r.store.now()
	r.store.bets[bet.ID] = copyBet(*bet)
	return nil
}

// Delete removes one of the owner's bets
func (r *MemoryBetRepository) Delete(_ context.Context, owner uuid.UUID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrInvalidID
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bet, ok := r.store.bets[id]
	if !ok || bet.UserID != owner {
		return models.ErrNotFound
	}
	delete(r.store.bets, id)
	return nil
}

// DeleteAllByOwner removes every bet the owner has recorded
func (r *MemoryBetRepository) DeleteAllByOwner(_ context.Context, owner uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, bet := range r.store.bets {
		if bet.UserID == owner {
			delete(r.store.bets, id)
			removed++
		}
	}
	return removed, nil
}

// MemoryUserRepository implements UserRepository in process memory
type MemoryUserRepository struct {
	store *memoryStore
}

// Create stores a new user
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Username == user.Username {
			return models.ErrDuplicateKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.store.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = copyUser(*user)
	return nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := copyUser(user)
	return &out, nil
}

// GetByUsername retrieves a user by exact username
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.Username == username {
			out := copyUser(user)
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

// UpdateUsername renames a user
func (r *MemoryUserRepository) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return models.ErrNotFound
	}
	for otherID, other := range r.store.users {
		if otherID != id && other.Username == username {
			return models.ErrDuplicateKey
		}
	}
	user.Username = username
	user.UpdatedAt = r.store.now()
	r.store.users[id] = user
	return nil
}

// List retrieves every user ordered by username
func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*models.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		out := copyUser(user)
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// SaveStatsSnapshot stores the latest computed profile statistics
func (r *MemoryUserRepository) SaveStatsSnapshot(_ context.Context, id uuid.UUID, stats *models.StatsSnapshot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if stats != nil {
		snapshot := *stats
		user.Stats = &snapshot
	} else {
		user.Stats = nil
	}
	now := r.store.now()
	user.StatsUpdatedAt = &now
	r.store.users[id] = user
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyBet(b models.RawBet) models.RawBet {
	b.Stake = copyFloat(b.Stake)
	b.Payout = copyFloat(b.Payout)
	b.ProfitLoss = copyFloat(b.ProfitLoss)
	return b
}

func copyUser(u models.User) models.User {
	if u.Stats != nil {
		stats := *u.Stats
		stats.ClvPct = copyFloat(stats.ClvPct)
		u.Stats = &stats
	}
	if u.StatsUpdatedAt != nil {
		t := *u.StatsUpdatedAt
		u.StatsUpdatedAt = &t
	}
	return u
}
