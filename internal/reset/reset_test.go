package reset

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func TestMemoryIssueValidateConsume(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewMemoryStoreWithClock(time.Hour, clock.Now)

	token, err := s.Issue(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := s.Validate(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := s.Consume(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "u-1", rec.UserID)
	require.Equal(t, "alice@example.com", rec.Email)
	require.Equal(t, clock.Now().Add(time.Hour), rec.ExpiresAt)

	_, err = s.Consume(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)

	ok, _ = s.Validate(ctx, token)
	require.False(t, ok)
}

func TestMemoryIssueRejectsEmptyInput(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	_, err := s.Issue(context.Background(), "", "alice@example.com")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Issue(context.Background(), "u-1", " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryTokensAreUnique(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := s.Issue(context.Background(), "u-1", "alice@example.com")
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestMemoryExpiryWindow(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewMemoryStoreWithClock(time.Hour, clock.Now)

	token, err := s.Issue(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	ok, _ := s.Validate(ctx, token)
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	ok, _ = s.Validate(ctx, token)
	require.False(t, ok)

	_, err = s.Consume(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySweepExpired(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewMemoryStoreWithClock(time.Hour, clock.Now)

	old, _ := s.Issue(ctx, "u-1", "alice@example.com")
	clock.Advance(30 * time.Minute)
	fresh, _ := s.Issue(ctx, "u-2", "bob@example.com")
	clock.Advance(31 * time.Minute)

	removed, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	ok, _ := s.Validate(ctx, old)
	require.False(t, ok)
	ok, _ = s.Validate(ctx, fresh)
	require.True(t, ok)

	removed, err = s.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestMemoryConcurrentConsumeSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	token, err := s.Issue(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, token); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:", time.Hour), mr
}

func TestRedisIssueValidateConsume(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	token, err := s.Issue(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)
	require.True(t, mr.Exists("test:reset:"+token))

	ok, err := s.Validate(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := s.Consume(ctx, token)
	require.NoError(t, err)
	require.Equal(t, token, rec.Token)
	require.Equal(t, "u-1", rec.UserID)

	_, err = s.Consume(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, mr.Exists("test:reset:"+token))
}

func TestRedisExpiryWindow(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	clock := newClock()
	s.nowF = clock.Now

	token, err := s.Issue(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	mr.FastForward(59 * time.Minute)
	ok, err := s.Validate(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	mr.FastForward(2 * time.Minute)
	ok, err = s.Validate(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Consume(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisUnknownToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	ok, err := s.Validate(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Consume(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	removed, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}
