package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window attempt counter keyed by client.
type Limiter interface {
	// Allow records an attempt and reports whether it is within the budget.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the attempts recorded for key.
	Reset(ctx context.Context, key string) error
}

// MemoryLimiter keeps attempt counters in process memory
type MemoryLimiter struct {
	mu     sync.Mutex
	counts *cache.Cache
	max    int
	window time.Duration
}

// NewMemoryLimiter allows max attempts per key in each window
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		counts: cache.New(window, window*2),
		max:    max,
		window: window,
	}
}

// Allow records an attempt for key
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.counts.Add(key, 1, l.window); err == nil {
		return l.max >= 1, nil
	}
	n, err := l.counts.IncrementInt(key, 1)
	if err != nil {
		// The entry expired between Add and IncrementInt.
		l.counts.Set(key, 1, l.window)
		n = 1
	}
	return n <= l.max, nil
}

// Reset clears the attempts recorded for key
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts.Delete(key)
	return nil
}

// Len returns the number of live counters, after evicting expired ones
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts.DeleteExpired()
	return l.counts.ItemCount()
}

// RedisLimiter keeps attempt counters in Redis so every instance shares them
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
}

// NewRedisLimiter allows max attempts per key in each window
func NewRedisLimiter(rdb *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, max: max, window: window}
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + ":" + key
}

// Allow records an attempt for key. The counter is created with its window
// TTL and incremented in one MULTI/EXEC, so a counter never exists without an
// expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, l.window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}
	return incr.Val() <= int64(l.max), nil
}

// Reset clears the attempts recorded for key
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}
