// Package reset stores one-time, time-limited password reset tokens.
package reset

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"forestpest/auth/internal/models"
)

const DefaultTTL = time.Hour

var (
	ErrNotFound     = errors.New("reset token not found")
	ErrInvalidInput = errors.New("user id and email required")
)

// Store is the password reset token store. Validate and Consume report a
// missing or expired token as a negative result, never as a failure of the
// store itself.
type Store interface {
	Issue(ctx context.Context, userID, email string) (string, error)
	Validate(ctx context.Context, token string) (bool, error)
	// Consume atomically validates and removes token. It returns ErrNotFound
	// when the token is absent or expired.
	Consume(ctx context.Context, token string) (models.PasswordResetToken, error)
	SweepExpired(ctx context.Context) (int, error)
}

func newToken() string {
	return ksuid.New().String()
}

func checkInput(userID, email string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}
	return nil
}
