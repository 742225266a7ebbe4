package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"forestpest/auth/internal/models"
	"forestpest/auth/internal/security"
)

// UserStore reports a missing user with repository.ErrUserNotFound.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	UpdateLastLoginTime(ctx context.Context, id string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	// RevokeTokens records that every token issued to the user up to at is
	// revoked.
	RevokeTokens(ctx context.Context, id string, at time.Time) error
}

type TokenSigner interface {
	IssueAccessToken(userID, username, role string) (string, error)
	IssueRefreshToken(userID, username string) (string, error)
	ValidateAccess(token string) bool
	ValidateRefresh(token string) bool
	IsExpired(token string) (bool, error)
	ExtractUserID(token string) (string, error)
	ExtractUsername(token string) (string, error)
	ExtractRole(token string) (string, error)
	RemainingLifetime(token string) time.Duration
	ExpiresWithin(token string, d time.Duration) bool
	IssuedAt(token string) (time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) (bool, error)
}

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string) error
}

// LogNotifier stands in for mail delivery. It logs the recipient and a
// fingerprint of the token, never the token itself.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "reset-notifier").Logger()}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, email, token string) error {
	n.log.Info().
		Str("email", email).
		Str("token_fp", security.Fingerprint(token)).
		Msg("password reset requested")
	return nil
}
