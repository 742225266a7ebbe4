package blacklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Blacklist {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Blacklist{
		"memory": NewMemoryBlacklist(),
		"redis":  NewRedisBlacklist(client, "test:"),
	}
}

// expiredByPrefix treats tokens starting with "old-" as expired and tokens
// starting with "bad-" as unparsable.
func expiredByPrefix(token string) (bool, error) {
	if strings.HasPrefix(token, "bad-") {
		return false, errors.New("malformed token")
	}
	return strings.HasPrefix(token, "old-"), nil
}

func TestAddContains(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Add(ctx, "tok-1"))
			require.NoError(t, b.Add(ctx, "tok-1"))

			ok, err := b.Contains(ctx, "tok-1")
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = b.Contains(ctx, "tok-2")
			require.NoError(t, err)
			require.False(t, ok)

			n, err := b.Len(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, n)
		})
	}
}

func TestAddIgnoresBlankTokens(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Add(ctx, ""))
			require.NoError(t, b.Add(ctx, "   "))

			n, err := b.Len(ctx)
			require.NoError(t, err)
			require.Zero(t, n)
		})
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Add(ctx, "old-1"))
			require.NoError(t, b.Add(ctx, "live-1"))

			removed, err := b.Sweep(ctx, expiredByPrefix)
			require.NoError(t, err)
			require.Equal(t, 1, removed)

			ok, _ := b.Contains(ctx, "old-1")
			require.False(t, ok)
			ok, _ = b.Contains(ctx, "live-1")
			require.True(t, ok)
		})
	}
}

func TestSweepRemovesUnparsable(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Add(ctx, "bad-1"))
			require.NoError(t, b.Add(ctx, "live-1"))

			removed, err := b.Sweep(ctx, expiredByPrefix)
			require.NoError(t, err)
			require.Equal(t, 1, removed)

			n, _ := b.Len(ctx)
			require.Equal(t, 1, n)
		})
	}
}

func TestSweepIdle(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			removed, err := b.Sweep(ctx, expiredByPrefix)
			require.NoError(t, err)
			require.Zero(t, removed)
		})
	}
}

func TestRedisSweepManyBatches(t *testing.T) {
	ctx := context.Background()
	b := backends(t)["redis"]
	for i := 0; i < 3*sweepBatch; i++ {
		prefix := "live-"
		if i%2 == 0 {
			prefix = "old-"
		}
		require.NoError(t, b.Add(ctx, fmt.Sprintf("%s%d", prefix, i)))
	}

	removed, err := b.Sweep(ctx, expiredByPrefix)
	require.NoError(t, err)
	require.Equal(t, 3*sweepBatch/2, removed)

	n, err := b.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 3*sweepBatch/2, n)
}

func TestConcurrentAddDuringSweepIsNotLost(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()
	for i := 0; i < 500; i++ {
		require.NoError(t, b.Add(ctx, fmt.Sprintf("old-%d", i)))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_, _ = b.Sweep(ctx, expiredByPrefix)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			token := fmt.Sprintf("live-%d", i)
			_ = b.Add(ctx, token)
			ok, _ := b.Contains(ctx, token)
			if !ok {
				t.Errorf("token %s missing right after Add", token)
			}
		}
	}()
	wg.Wait()

	for i := 0; i < 500; i++ {
		ok, _ := b.Contains(ctx, fmt.Sprintf("live-%d", i))
		require.True(t, ok)
	}
}
