package reset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"forestpest/auth/internal/models"
)

// RedisStore keeps one key per reset token. Keys carry a Redis TTL equal to
// the token lifetime, so expired records disappear on their own.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	nowF   func() time.Time
}

type redisRecord struct {
	UserID    string    `json:"uid"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"exp"`
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: keyPrefix + "reset:",
		ttl:    ttl,
		nowF:   time.Now,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) Issue(ctx context.Context, userID, email string) (string, error) {
	if err := checkInput(userID, email); err != nil {
		return "", err
	}

	token := newToken()
	payload, err := json.Marshal(redisRecord{
		UserID:    userID,
		Email:     email,
		ExpiresAt: s.nowF().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("encode reset token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Validate(ctx context.Context, token string) (bool, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load reset token: %w", err)
	}
	rec, err := decode(token, raw)
	if err != nil {
		return false, nil
	}
	return rec.ExpiresAt.After(s.nowF()), nil
}

// Consume uses GETDEL so two concurrent consumers can never both succeed.
func (s *RedisStore) Consume(ctx context.Context, token string) (models.PasswordResetToken, error) {
	raw, err := s.client.GetDel(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PasswordResetToken{}, ErrNotFound
	}
	if err != nil {
		return models.PasswordResetToken{}, fmt.Errorf("consume reset token: %w", err)
	}
	rec, err := decode(token, raw)
	if err != nil || !rec.ExpiresAt.After(s.nowF()) {
		return models.PasswordResetToken{}, ErrNotFound
	}
	return rec, nil
}

// SweepExpired is a no-op: Redis expires reset keys itself.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func decode(token string, raw []byte) (models.PasswordResetToken, error) {
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.PasswordResetToken{}, err
	}
	return models.PasswordResetToken{
		Token:     token,
		UserID:    rec.UserID,
		Email:     rec.Email,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
