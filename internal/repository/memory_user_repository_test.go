package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"forestpest/auth/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	require.NoError(t, r.Create(ctx, models.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "Alice@Example.com",
		PasswordHash: []byte("h1"),
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}))

	u, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)

	u, err = r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = r.FindByID(ctx, "u-9")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.FindByUsername(ctx, "bob")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.ErrorIs(t, r.Create(ctx, models.User{Username: "alice", Email: "other@example.com"}), ErrUserConflict)
	require.ErrorIs(t, r.Create(ctx, models.User{Username: "al", Email: "ALICE@example.com"}), ErrUserConflict)
}

func TestMemoryUserRepositoryAllowsSeveralUsersWithoutEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	require.NoError(t, r.Create(ctx, models.User{Username: "field-1"}))
	require.NoError(t, r.Create(ctx, models.User{Username: "field-2"}))
	require.ErrorIs(t, r.Create(ctx, models.User{Username: "field-1"}), ErrUserConflict)

	_, err := r.FindByEmail(ctx, "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryUserRepositoryUpdates(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()
	require.NoError(t, r.Create(ctx, models.User{Username: "bob", Email: "bob@example.com", PasswordHash: []byte("old")}))
	bob, err := r.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotEmpty(t, bob.ID)

	require.NoError(t, r.UpdatePassword(ctx, bob.ID, []byte("new")))
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateLastLoginTime(ctx, bob.ID, at))
	require.NoError(t, r.UpdateStatus(ctx, bob.ID, models.UserStatusLocked))
	revoked := at.Add(time.Hour)
	require.NoError(t, r.RevokeTokens(ctx, bob.ID, revoked))

	bob, err = r.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), bob.PasswordHash)
	require.Equal(t, at, *bob.LastLoginAt)
	require.Equal(t, models.UserStatusLocked, bob.Status)
	require.Equal(t, revoked, *bob.TokensRevokedAt)

	require.ErrorIs(t, r.UpdatePassword(ctx, "missing", nil), ErrUserNotFound)
	require.ErrorIs(t, r.RevokeTokens(ctx, "missing", revoked), ErrUserNotFound)
}
