package blacklist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const sweepBatch = 200

// RedisBlacklist keeps revoked tokens in a single Redis set so several API
// processes can share revocations.
type RedisBlacklist struct {
	client *redis.Client
	key    string
}

func NewRedisBlacklist(client *redis.Client, keyPrefix string) *RedisBlacklist {
	return &RedisBlacklist{client: client, key: keyPrefix + "blacklist"}
}

func (b *RedisBlacklist) Add(ctx context.Context, token string) error {
	if blank(token) {
		return nil
	}
	if err := b.client.SAdd(ctx, b.key, token).Err(); err != nil {
		return fmt.Errorf("blacklist add: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	ok, err := b.client.SIsMember(ctx, b.key, token).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist contains: %w", err)
	}
	return ok, nil
}

// Sweep walks the set with SSCAN and removes expired members one by one
// with SREM, so members added concurrently are left alone.
func (b *RedisBlacklist) Sweep(ctx context.Context, isExpired ExpiryFunc) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		members, next, err := b.client.SScan(ctx, b.key, cursor, "", sweepBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("blacklist scan: %w", err)
		}

		var stale []interface{}
		for _, token := range members {
			if expired(isExpired, token) {
				stale = append(stale, token)
			}
		}
		if len(stale) > 0 {
			n, err := b.client.SRem(ctx, b.key, stale...).Result()
			if err != nil {
				return removed, fmt.Errorf("blacklist remove: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (b *RedisBlacklist) Len(ctx context.Context) (int, error) {
	n, err := b.client.SCard(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("blacklist len: %w", err)
	}
	return int(n), nil
}
