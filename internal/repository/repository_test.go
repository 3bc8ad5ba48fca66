package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/database"
	"github.com/yourusername/betting-tracker/internal/models"
)

func ptr(v float64) *float64 {
	return &v
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newUser(t *testing.T, ctx context.Context, repos *Repositories, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, repos.User.Create(ctx, user))
	return user
}

// runRepositoryContract exercises behaviour every implementation must share.
func runRepositoryContract(t *testing.T, newRepos func(t *testing.T) *Repositories) {
	t.Run("bets are scoped to their owner", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)
		alice := newUser(t, ctx, repos, "alice")
		bob := newUser(t, ctx, repos, "bob")

		bet := &models.RawBet{UserID: alice.ID, Sport: "NBA", Outcome: models.OutcomeWin, Stake: ptr(10), Payout: ptr(19.1)}
		require.NoError(t, repos.Bet.Create(ctx, bet))
		require.NotEmpty(t, bet.ID)

		got, err := repos.Bet.GetByID(ctx, alice.ID, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, "NBA", got.Sport)
		require.NotNil(t, got.Payout)
		assert.Equal(t, 19.1, *got.Payout)
		assert.Nil(t, got.ProfitLoss)

		_, err = repos.Bet.GetByID(ctx, bob.ID, bet.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		assert.ErrorIs(t, repos.Bet.Delete(ctx, bob.ID, bet.ID), models.ErrNotFound)

		bobs, err := repos.Bet.ListByOwner(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, bobs)
	})

	t.Run("update and delete", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)
		owner := newUser(t, ctx, repos, "carol")

		bet := &models.RawBet{UserID: owner.ID, Outcome: models.OutcomePending, Stake: ptr(25)}
		require.NoError(t, repos.Bet.Create(ctx, bet))

		bet.Outcome = models.OutcomeLoss
		bet.Payout = ptr(0)
		require.NoError(t, repos.Bet.Update(ctx, bet))

		got, err := repos.Bet.GetByID(ctx, owner.ID, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeLoss, got.Outcome)

		stranger := *bet
		stranger.UserID = uuid.New()
		assert.ErrorIs(t, repos.Bet.Update(ctx, &stranger), models.ErrNotFound)

		require.NoError(t, repos.Bet.Delete(ctx, owner.ID, bet.ID))
		_, err = repos.Bet.GetByID(ctx, owner.ID, bet.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("invalid ids", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)

		_, err := repos.Bet.GetByID(ctx, uuid.New(), "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrInvalidID)
		assert.ErrorIs(t, repos.Bet.Delete(ctx, uuid.New(), "42"), models.ErrInvalidID)
	})

	t.Run("list newest first and delete all", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)
		owner := newUser(t, ctx, repos, "dana")

		var ids []string
		for i := 0; i < 3; i++ {
			bet := &models.RawBet{UserID: owner.ID, Outcome: models.OutcomeWin, Stake: ptr(float64(i + 1))}
			require.NoError(t, repos.Bet.Create(ctx, bet))
			ids = append(ids, bet.ID)
			time.Sleep(2 * time.Millisecond)
		}

		bets, err := repos.Bet.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, bets, 3)
		assert.Equal(t, ids[2], bets[0].ID)
		assert.Equal(t, ids[0], bets[2].ID)

		removed, err := repos.Bet.DeleteAllByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)

		bets, err = repos.Bet.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, bets)
	})

	t.Run("usernames are unique", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)
		erin := newUser(t, ctx, repos, "erin")
		newUser(t, ctx, repos, "frank")

		err := repos.User.Create(ctx, &models.User{Username: "erin", PasswordHash: "x", Role: models.RoleUser})
		assert.ErrorIs(t, err, models.ErrDuplicateKey)

		assert.ErrorIs(t, repos.User.UpdateUsername(ctx, erin.ID, "frank"), models.ErrDuplicateKey)
		require.NoError(t, repos.User.UpdateUsername(ctx, erin.ID, "erin2"))

		got, err := repos.User.GetByUsername(ctx, "erin2")
		require.NoError(t, err)
		assert.Equal(t, erin.ID, got.ID)

		_, err = repos.User.GetByUsername(ctx, "erin")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("stats snapshot", func(t *testing.T) {
		repos := newRepos(t)
		ctx := testContext(t)
		user := newUser(t, ctx, repos, "gail")

		clv := 2.5
		require.NoError(t, repos.User.SaveStatsSnapshot(ctx, user.ID, &models.StatsSnapshot{
			TotalBets: 4, NetProfit: 12.75, MostProfitable: "NHL", ClvPct: &clv,
		}))

		got, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Stats)
		assert.Equal(t, 12.75, got.Stats.NetProfit)
		assert.Equal(t, "NHL", got.Stats.MostProfitable)
		require.NotNil(t, got.Stats.ClvPct)
		assert.Equal(t, 2.5, *got.Stats.ClvPct)
		assert.NotNil(t, got.StatsUpdatedAt)

		users, err := repos.User.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)

		assert.ErrorIs(t, repos.User.SaveStatsSnapshot(ctx, uuid.New(), &models.StatsSnapshot{}), models.ErrNotFound)
	})
}

func TestMemoryRepositories(t *testing.T) {
	runRepositoryContract(t, func(*testing.T) *Repositories {
		return NewMemoryRepositories()
	})
}

func TestPostgresRepositories(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) *Repositories {
		db := database.SetupTestDB(t)
		repos, err := NewRepositories(db)
		require.NoError(t, err)
		return repos
	})
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := testContext(t)
	owner := newUser(t, ctx, repos, "hana")

	bet := &models.RawBet{UserID: owner.ID, Outcome: models.OutcomeWin, Stake: ptr(10)}
	require.NoError(t, repos.Bet.Create(ctx, bet))
	*bet.Stake = 999

	got, err := repos.Bet.GetByID(ctx, owner.ID, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *got.Stake)
}
