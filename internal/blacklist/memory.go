package blacklist

import (
	"context"
	"sync"
)

// MemoryBlacklist is the in-process Blacklist.
type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]struct{})}
}

func (b *MemoryBlacklist) Add(ctx context.Context, token string) error {
	if blank(token) {
		return nil
	}
	b.mu.Lock()
	b.tokens[token] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	b.mu.RLock()
	_, ok := b.tokens[token]
	b.mu.RUnlock()
	return ok, nil
}

// Sweep evaluates isExpired outside the lock, so a slow parser never blocks
// Add or Contains. Only tokens judged expired are deleted.
func (b *MemoryBlacklist) Sweep(ctx context.Context, isExpired ExpiryFunc) (int, error) {
	b.mu.RLock()
	snapshot := make([]string, 0, len(b.tokens))
	for token := range b.tokens {
		snapshot = append(snapshot, token)
	}
	b.mu.RUnlock()

	var stale []string
	for _, token := range snapshot {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if expired(isExpired, token) {
			stale = append(stale, token)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	removed := 0
	for _, token := range stale {
		if _, ok := b.tokens[token]; ok {
			delete(b.tokens, token)
			removed++
		}
	}
	b.mu.Unlock()
	return removed, nil
}

func (b *MemoryBlacklist) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tokens), nil
}
