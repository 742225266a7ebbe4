// Package blacklist holds revoked token strings until they expire naturally.
package blacklist

import (
	"context"
	"strings"
)

// ExpiryFunc reports whether token has expired. An error means the token
// could not be parsed; such entries are swept as well.
type ExpiryFunc func(token string) (bool, error)

// Blacklist is a concurrent set of revoked tokens.
type Blacklist interface {
	// Add inserts token. Blank tokens are ignored. Add is idempotent.
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
	// Sweep removes each entry for which isExpired returns true or an error,
	// and returns how many entries it removed.
	Sweep(ctx context.Context, isExpired ExpiryFunc) (int, error)
	Len(ctx context.Context) (int, error)
}

func blank(token string) bool {
	return strings.TrimSpace(token) == ""
}

func expired(isExpired ExpiryFunc, token string) bool {
	ok, err := isExpired(token)
	return err != nil || ok
}
