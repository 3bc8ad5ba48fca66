package auth

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/repository"
)

const testSecret = "unit-test-signing-secret"

func newTestService(t *testing.T, limiter Limiter) (*Service, *repository.Repositories) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	repos := repository.NewMemoryRepositories()
	svc := NewService(repos.User, NewTokenManager(testSecret, time.Hour), limiter, logger.NewAuditLogger(log), true)
	return svc, repos
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter23"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)
	user := &models.User{ID: uuid.New(), Username: "casey", Role: models.RoleAdmin}

	token, expires, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "casey", claims.Username)
	assert.True(t, claims.IsAdmin())
}

func TestTokenRejections(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)
	user := &models.User{ID: uuid.New(), Username: "casey", Role: models.RoleUser}
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	_, err = NewTokenManager("a-different-signing-secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(2, 50*time.Millisecond)

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	time.Sleep(80 * time.Millisecond)
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "a new window starts after expiry")
}

func TestMemoryLimiterResetAndEviction(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(1, 30*time.Millisecond)

	_, _ = limiter.Allow(ctx, "a")
	ok, _ := limiter.Allow(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "a"))
	ok, _ = limiter.Allow(ctx, "a")
	assert.True(t, ok)

	_, _ = limiter.Allow(ctx, "b")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, limiter.Len(), "expired counters are evicted")
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("BETTING_TRACKER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BETTING_TRACKER_TEST_REDIS_ADDR not set; skipping redis test")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRedisLimiter(rdb, "test-login-"+uuid.NewString(), 2, time.Second)
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, ok)

		ttl, err := rdb.PTTL(ctx, limiter.key("client")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "attempt counter must always carry an expiry")
	}
	ok, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "client"))
	ok, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryLimiter(10, time.Minute))

	session, err := svc.Register(ctx, Credentials{Username: "  casey  ", Password: "pa55word"})
	require.NoError(t, err)
	assert.Equal(t, "casey", session.User.Username)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Register(ctx, Credentials{Username: "casey", Password: "other"})
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	login, err := svc.Login(ctx, Credentials{Username: "casey", Password: "pa55word"}, "10.0.0.1")
	require.NoError(t, err)
	claims, err := svc.Authenticate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	_, err = svc.Login(ctx, Credentials{Username: "casey", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, Credentials{Username: "nobody", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryLimiter(10, time.Minute))

	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{name: "missing password", creds: Credentials{Username: "casey"}, want: "Username and password are required."},
		{name: "short username", creds: Credentials{Username: "ab", Password: "x"}, want: "Username must be between 3 and 30 characters."},
		{name: "unknown role", creds: Credentials{Username: "casey", Password: "x", Role: "root"}, want: "Role must be user or admin."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.creds)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Message)
		})
	}
}

func TestRegistrationClosed(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	repos := repository.NewMemoryRepositories()
	svc := NewService(repos.User, NewTokenManager(testSecret, time.Hour), NewMemoryLimiter(1, time.Minute), logger.NewAuditLogger(log), false)

	_, err := svc.Register(context.Background(), Credentials{Username: "casey", Password: "x"})
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestLoginThrottled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryLimiter(2, time.Minute))
	_, err := svc.Register(ctx, Credentials{Username: "casey", Password: "pa55word"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Login(ctx, Credentials{Username: "casey", Password: "wrong"}, "10.0.0.9")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = svc.Login(ctx, Credentials{Username: "casey", Password: "pa55word"}, "10.0.0.9")
	assert.ErrorIs(t, err, ErrThrottled)

	_, err = svc.Login(ctx, Credentials{Username: "casey", Password: "pa55word"}, "10.0.0.10")
	assert.NoError(t, err, "other clients are unaffected")
}

func TestChangeUsername(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestService(t, NewMemoryLimiter(10, time.Minute))
	casey, err := svc.Register(ctx, Credentials{Username: "casey", Password: "pa55word"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Credentials{Username: "jordan", Password: "pa55word"})
	require.NoError(t, err)

	_, err = svc.ChangeUsername(ctx, casey.User.ID, "jordan")
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	_, err = svc.ChangeUsername(ctx, casey.User.ID, "x")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	same, err := svc.ChangeUsername(ctx, casey.User.ID, "casey")
	require.NoError(t, err)
	assert.Equal(t, "casey", same.User.Username)

	renamed, err := svc.ChangeUsername(ctx, casey.User.ID, "casey_k")
	require.NoError(t, err)
	claims, err := svc.Authenticate(renamed.Token)
	require.NoError(t, err)
	assert.Equal(t, "casey_k", claims.Username)

	stored, err := repos.User.GetByID(ctx, casey.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "casey_k", stored.Username)
}
