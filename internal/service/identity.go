package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"forestpest/auth/internal/models"
	"forestpest/auth/internal/repository"
	"forestpest/auth/internal/security"
)

// Identity is the verified caller of one request. It is produced by
// Authenticate and must not outlive that request.
type Identity struct {
	UserID   string
	Username string
	Role     models.UserRole
	// Token is the access token the identity was verified from. It doubles
	// as the session id.
	Token string
}

// AuthRequirement is satisfied when the caller holds at least one of
// AnyPermission (if set) and at least one of AnyRole (if set).
type AuthRequirement struct {
	AnyPermission []string
	AnyRole       []models.UserRole
}

// Authenticate verifies token, loads its user and marks the session as
// used. It fails with ErrInvalidToken or ErrAccountDisabled.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	if !s.ValidateAccessToken(ctx, token) {
		return Identity{}, ErrInvalidToken
	}
	userID, err := s.tokens.ExtractUserID(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, fmt.Errorf("find user: %w", err)
	}
	if user.Status != models.UserStatusActive {
		return Identity{}, ErrAccountDisabled
	}

	if err := s.sessions.Touch(ctx, user.ID, token); err != nil {
		s.log.Warn().Err(err).Str("session", security.Fingerprint(token)).Msg("touch session failed")
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Token:    token,
	}, nil
}

// Authorize checks id against req using the role permission table. The
// role comes from the user record loaded by Authenticate, not from the
// token claims.
func (s *AuthService) Authorize(id Identity, req AuthRequirement) error {
	if len(req.AnyRole) > 0 && !slices.Contains(req.AnyRole, id.Role) {
		return ErrPermissionDenied
	}
	if len(req.AnyPermission) > 0 && !s.perms.HasAny(string(id.Role), req.AnyPermission...) {
		return ErrPermissionDenied
	}
	return nil
}
