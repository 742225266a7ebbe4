package reset

import (
	"context"
	"sync"
	"time"

	"forestpest/auth/internal/models"
)

type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]models.PasswordResetToken
	ttl    time.Duration
	nowF   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(ttl, time.Now)
}

// NewMemoryStoreWithClock is NewMemoryStore with an injectable clock.
func NewMemoryStoreWithClock(ttl time.Duration, now func() time.Time) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		tokens: make(map[string]models.PasswordResetToken),
		ttl:    ttl,
		nowF:   now,
	}
}

func (s *MemoryStore) Issue(ctx context.Context, userID, email string) (string, error) {
	if err := checkInput(userID, email); err != nil {
		return "", err
	}

	token := newToken()
	s.mu.Lock()
	s.tokens[token] = models.PasswordResetToken{
		Token:     token,
		UserID:    userID,
		Email:     email,
		ExpiresAt: s.nowF().Add(s.ttl),
	}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Validate(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	rec, ok := s.tokens[token]
	s.mu.Unlock()
	return ok && rec.ExpiresAt.After(s.nowF()), nil
}

func (s *MemoryStore) Consume(ctx context.Context, token string) (models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tokens[token]
	if !ok {
		return models.PasswordResetToken{}, ErrNotFound
	}
	delete(s.tokens, token)
	if !rec.ExpiresAt.After(s.nowF()) {
		return models.PasswordResetToken{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	now := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, rec := range s.tokens {
		if !rec.ExpiresAt.After(now) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed, nil
}
