package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"forestpest/auth/internal/blacklist"
	"forestpest/auth/internal/metrics"
	"forestpest/auth/internal/models"
	"forestpest/auth/internal/permission"
	"forestpest/auth/internal/repository"
	"forestpest/auth/internal/reset"
	"forestpest/auth/internal/security"
	"forestpest/auth/internal/session"
)

// ResetRequestedMessage is returned for every password reset request so the
// response never reveals whether the email belongs to an account.
const ResetRequestedMessage = "If this email address exists, you will receive a password reset email"

const (
	revokeLogout        = "logout"
	revokeEviction      = "eviction"
	revokeTerminate     = "terminate"
	revokePasswordReset = "password_reset"
	revokeStatusChange  = "status_change"
)

// DefaultExpiringSoon is the remaining lifetime under which TokenInfo flags an
// access token as expiring soon.
const DefaultExpiringSoon = 30 * time.Minute

type Dependencies struct {
	Users       UserStore
	Tokens      TokenSigner
	Passwords   PasswordHasher
	Permissions permission.Model
	Blacklist   blacklist.Blacklist
	Resets      reset.Store
	Sessions    session.Registry
	Notifier    ResetNotifier
	Metrics     *metrics.Metrics
	Log         zerolog.Logger
	// ExpiringSoon defaults to DefaultExpiringSoon.
	ExpiringSoon time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthService coordinates login, logout, token refresh, password reset and
// authorization checks over the blacklist, reset and session stores. It holds
// no state of its own.
type AuthService struct {
	users     UserStore
	tokens    TokenSigner
	passwords PasswordHasher
	perms     permission.Model
	blacklist blacklist.Blacklist
	resets    reset.Store
	sessions  session.Registry
	notifier  ResetNotifier
	metrics   *metrics.Metrics
	log       zerolog.Logger
	soon      time.Duration
	nowF      func() time.Time
}

func NewAuthService(deps Dependencies) *AuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	soon := deps.ExpiringSoon
	if soon <= 0 {
		soon = DefaultExpiringSoon
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(deps.Log)
	}
	return &AuthService{
		users:     deps.Users,
		tokens:    deps.Tokens,
		passwords: deps.Passwords,
		perms:     deps.Permissions,
		blacklist: deps.Blacklist,
		resets:    deps.Resets,
		sessions:  deps.Sessions,
		notifier:  notifier,
		metrics:   deps.Metrics,
		log:       deps.Log.With().Str("component", "auth").Logger(),
		soon:      soon,
		nowF:      now,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.UserSummary
	ExpiresIn    time.Duration
	LoginAt      time.Time
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.Login(metrics.LoginRejected)
			s.log.Info().Str("username", input.Username).Msg("login rejected: unknown user")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}

	if user.Status != models.UserStatusActive {
		s.metrics.Login(metrics.LoginDisabled)
		s.log.Info().Str("user_id", user.ID).Str("status", string(user.Status)).Msg("login rejected: account disabled")
		return LoginResult{}, ErrAccountDisabled
	}

	ok, err := s.passwords.Verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if err != nil || !ok {
		s.metrics.Login(metrics.LoginRejected)
		s.log.Info().Str("user_id", user.ID).Msg("login rejected: wrong password")
		return LoginResult{}, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.registerSession(ctx, user, accessToken); err != nil {
		return LoginResult{}, err
	}

	now := s.nowF()
	if err := s.users.UpdateLastLoginTime(ctx, user.ID, now); err != nil {
		return LoginResult{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &now

	s.metrics.Login(metrics.LoginSuccess)
	s.log.Info().Str("user_id", user.ID).Str("session", security.Fingerprint(accessToken)).Msg("login succeeded")

	return LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Summary(),
		ExpiresIn:    s.tokens.RemainingLifetime(accessToken),
		LoginAt:      now,
	}, nil
}

// registerSession records accessToken as a new session and revokes the
// session it displaced, if any.
func (s *AuthService) registerSession(ctx context.Context, user models.User, accessToken string) error {
	_, evicted, err := s.sessions.Register(ctx, user.ID, user.Username, accessToken)
	if err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	if evicted == "" {
		return nil
	}
	if err := s.blacklist.Add(ctx, evicted); err != nil {
		return fmt.Errorf("revoke evicted session: %w", err)
	}
	s.metrics.SessionEvicted()
	s.metrics.TokensRevoked(revokeEviction, 1)
	s.log.Info().
		Str("user_id", user.ID).
		Str("evicted", security.Fingerprint(evicted)).
		Msg("session limit reached, oldest session evicted")
	return nil
}

// Logout revokes token and ends its session. Blank, malformed and expired
// tokens are accepted; only a failing blacklist backend is reported.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.blacklist.Add(ctx, token); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	s.metrics.TokensRevoked(revokeLogout, 1)

	var err error
	if userID, extractErr := s.tokens.ExtractUserID(token); extractErr == nil {
		_, err = s.sessions.DeactivateBySessionID(ctx, userID, token)
	} else {
		_, err = s.sessions.TerminateGlobalBySessionID(ctx, token)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("session", security.Fingerprint(token)).Msg("deactivate session on logout failed")
	}
	s.log.Info().Str("session", security.Fingerprint(token)).Msg("logout")
	return nil
}

// RefreshToken issues a new access token for a valid refresh token. The
// refresh token itself is returned unchanged.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (LoginResult, error) {
	if !s.ValidateRefreshToken(ctx, refreshToken) {
		return LoginResult{}, ErrInvalidToken
	}
	userID, err := s.tokens.ExtractUserID(refreshToken)
	if err != nil {
		return LoginResult{}, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if user.Status != models.UserStatusActive {
		return LoginResult{}, ErrAccountDisabled
	}
	if s.revokedForUser(user, refreshToken) {
		s.log.Info().Str("user_id", user.ID).Msg("refresh rejected: issued before sessions were revoked")
		return LoginResult{}, ErrInvalidToken
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}
	if err := s.registerSession(ctx, user, accessToken); err != nil {
		return LoginResult{}, err
	}

	s.log.Debug().Str("user_id", user.ID).Msg("access token refreshed")
	return LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Summary(),
		ExpiresIn:    s.tokens.RemainingLifetime(accessToken),
		LoginAt:      s.nowF(),
	}, nil
}

// revokedForUser reports whether token was issued no later than the second
// in which the user's sessions were last revoked. iat only has second
// precision, so a token from that same second counts as revoked.
func (s *AuthService) revokedForUser(user models.User, token string) bool {
	if user.TokensRevokedAt == nil {
		return false
	}
	iat, err := s.tokens.IssuedAt(token)
	if err != nil {
		return true
	}
	return !iat.After(user.TokensRevokedAt.Truncate(time.Second))
}

func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) bool {
	return s.usable(ctx, token) && s.tokens.ValidateAccess(token)
}

func (s *AuthService) ValidateRefreshToken(ctx context.Context, token string) bool {
	return s.usable(ctx, token) && s.tokens.ValidateRefresh(token)
}

// usable is false for blank tokens and for tokens on the blacklist. A
// failing blacklist lookup fails closed.
func (s *AuthService) usable(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		s.log.Error().Err(err).Msg("blacklist lookup failed")
		return false
	}
	return !revoked
}

func (s *AuthService) GetUserFromToken(ctx context.Context, token string) (models.User, bool) {
	userID, ok := s.GetUserIDFromToken(ctx, token)
	if !ok {
		return models.User{}, false
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("load user from token failed")
		}
		return models.User{}, false
	}
	return user, true
}

func (s *AuthService) GetUserIDFromToken(ctx context.Context, token string) (string, bool) {
	return s.claim(ctx, token, s.tokens.ExtractUserID)
}

func (s *AuthService) GetUsernameFromToken(ctx context.Context, token string) (string, bool) {
	return s.claim(ctx, token, s.tokens.ExtractUsername)
}

func (s *AuthService) GetRoleFromToken(ctx context.Context, token string) (string, bool) {
	return s.claim(ctx, token, s.tokens.ExtractRole)
}

func (s *AuthService) claim(ctx context.Context, token string, extract func(string) (string, error)) (string, bool) {
	if !s.ValidateAccessToken(ctx, token) {
		return "", false
	}
	v, err := extract(token)
	if err != nil {
		return "", false
	}
	return v, true
}

type TokenInfo struct {
	UserID       string
	Username     string
	Role         string
	Remaining    time.Duration
	ExpiringSoon bool
}

// TokenInfo describes a usable access token.
func (s *AuthService) TokenInfo(ctx context.Context, token string) (TokenInfo, bool) {
	userID, ok := s.GetUserIDFromToken(ctx, token)
	if !ok {
		return TokenInfo{}, false
	}
	username, _ := s.tokens.ExtractUsername(token)
	role, _ := s.tokens.ExtractRole(token)
	return TokenInfo{
		UserID:       userID,
		Username:     username,
		Role:         role,
		Remaining:    s.tokens.RemainingLifetime(token),
		ExpiringSoon: s.tokens.ExpiresWithin(token, s.soon),
	}, true
}

// InitiatePasswordReset issues a reset token for the account registered
// under email. The returned message is the same whether or not it exists.
func (s *AuthService) InitiatePasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Info().Msg("password reset requested for unknown email")
			return ResetRequestedMessage, nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token, err := s.resets.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	s.metrics.PasswordReset("issued")

	if err := s.notifier.NotifyPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("deliver reset token failed")
	}
	return ResetRequestedMessage, nil
}

func (s *AuthService) ValidatePasswordResetToken(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	ok, err := s.resets.Validate(ctx, token)
	if err != nil {
		s.log.Error().Err(err).Msg("validate reset token failed")
		return false
	}
	return ok
}

// ResetPassword spends resetToken, stores the new password and ends every
// session of the account.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if strings.TrimSpace(resetToken) == "" || newPassword == "" {
		return fmt.Errorf("%w: reset token and new password are required", ErrInvalidInput)
	}

	record, err := s.resets.Consume(ctx, resetToken)
	if err != nil {
		if errors.Is(err, reset.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	if _, err := s.users.FindByID(ctx, record.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.setPassword(ctx, record.UserID, newPassword); err != nil {
		return err
	}

	revoked, err := s.revokeAllSessions(ctx, record.UserID, revokePasswordReset)
	if err != nil {
		return err
	}
	s.metrics.PasswordReset("completed")
	s.log.Info().Str("user_id", record.UserID).Int("sessions_revoked", revoked).Msg("password reset")
	return nil
}

// ChangePassword replaces the password of userID after checking the current
// one. Existing sessions stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new password are required", ErrInvalidInput)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	ok, err := s.passwords.Verify(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if err := s.setPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// HasPermission is false for unknown users and for accounts that are not
// active.
func (s *AuthService) HasPermission(ctx context.Context, userID, perm string) bool {
	user, ok := s.activeUser(ctx, userID)
	return ok && s.perms.RoleHasPermission(string(user.Role), perm)
}

func (s *AuthService) HasRole(ctx context.Context, userID, role string) bool {
	user, ok := s.activeUser(ctx, userID)
	return ok && string(user.Role) == role
}

func (s *AuthService) activeUser(ctx context.Context, userID string) (models.User, bool) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("load user failed")
		}
		return models.User{}, false
	}
	return user, user.Status == models.UserStatusActive
}

func (s *AuthService) PermissionsForRole(role string) []string {
	return s.perms.PermissionsForRole(role)
}

func (s *AuthService) IsValidRole(role string) bool {
	return s.perms.IsValidRole(role)
}

func (s *AuthService) Roles() []string {
	return s.perms.Roles()
}

// ActionsForRole groups the permissions of role by resource, e.g.
// {"pest": ["identify", "view"]}.
func (s *AuthService) ActionsForRole(role string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range s.perms.PermissionsForRole(role) {
		resource, _, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		if _, seen := out[resource]; !seen {
			out[resource] = s.perms.ActionsFor(role, resource)
		}
	}
	return out
}

// CanPerformAction is HasPermission for the permission resource:action.
func (s *AuthService) CanPerformAction(ctx context.Context, userID, resource, action string) bool {
	return s.HasPermission(ctx, userID, permission.Permission(resource, action))
}

func (s *AuthService) GetUserActiveSessions(ctx context.Context, userID string) ([]models.Session, error) {
	sessions, err := s.sessions.ActiveSessionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// TerminateAllUserSessions ends and revokes every session of userID and
// returns how many were active.
func (s *AuthService) TerminateAllUserSessions(ctx context.Context, userID string) (int, error) {
	n, err := s.revokeAllSessions(ctx, userID, revokeTerminate)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("user_id", userID).Int("sessions_revoked", n).Msg("all sessions terminated")
	return n, nil
}

func (s *AuthService) revokeAllSessions(ctx context.Context, userID, reason string) (int, error) {
	if err := s.users.RevokeTokens(ctx, userID, s.nowF()); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	ids, err := s.sessions.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.blacklist.Add(ctx, id); err != nil {
			return 0, fmt.Errorf("blacklist session: %w", err)
		}
	}
	s.metrics.TokensRevoked(reason, len(ids))
	return len(ids), nil
}

// TerminateSession ends the session named by ref for whichever user owns it.
// ref is the session id or its security.Fingerprint. It reports false when
// no active session matches.
func (s *AuthService) TerminateSession(ctx context.Context, ref string) (bool, error) {
	if strings.TrimSpace(ref) == "" {
		return false, nil
	}
	sessionID, ok, err := s.sessions.Resolve(ctx, "", ref)
	if err != nil {
		return false, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return false, nil
	}
	found, err := s.sessions.TerminateGlobalBySessionID(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("terminate session: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := s.blacklist.Add(ctx, sessionID); err != nil {
		return false, fmt.Errorf("blacklist session: %w", err)
	}
	s.metrics.TokensRevoked(revokeTerminate, 1)
	s.log.Info().Str("session", security.Fingerprint(sessionID)).Msg("session terminated")
	return true, nil
}

// TerminateUserSession ends one of userID's own sessions, named by id or
// fingerprint. Sessions of other users never match.
func (s *AuthService) TerminateUserSession(ctx context.Context, userID, ref string) (bool, error) {
	if strings.TrimSpace(ref) == "" {
		return false, nil
	}
	sessionID, ok, err := s.sessions.Resolve(ctx, userID, ref)
	if err != nil {
		return false, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return false, nil
	}
	found, err := s.sessions.DeactivateBySessionID(ctx, userID, sessionID)
	if err != nil {
		return false, fmt.Errorf("deactivate session: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := s.blacklist.Add(ctx, sessionID); err != nil {
		return false, fmt.Errorf("blacklist session: %w", err)
	}
	s.metrics.TokensRevoked(revokeTerminate, 1)
	s.log.Info().Str("user_id", userID).Str("session", security.Fingerprint(sessionID)).Msg("own session terminated")
	return true, nil
}

// SetUserStatus changes the account status. Leaving ACTIVE revokes every
// session of the user, and the count of revoked sessions is returned.
func (s *AuthService) SetUserStatus(ctx context.Context, userID string, status models.UserStatus) (int, error) {
	switch status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusLocked:
	default:
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("update status: %w", err)
	}
	revoked := 0
	if status != models.UserStatusActive {
		n, err := s.revokeAllSessions(ctx, userID, revokeStatusChange)
		if err != nil {
			return 0, err
		}
		revoked = n
	}
	s.log.Info().Str("user_id", userID).Str("status", string(status)).Int("sessions_revoked", revoked).Msg("user status changed")
	return revoked, nil
}

func (s *AuthService) SetSessionInfo(ctx context.Context, userID, info string) error {
	return s.sessions.SetInfo(ctx, userID, info)
}

func (s *AuthService) SessionInfo(ctx context.Context, userID string) (string, bool, error) {
	return s.sessions.Info(ctx, userID)
}

func (s *AuthService) ClearSessionInfo(ctx context.Context, userID string) error {
	return s.sessions.ClearInfo(ctx, userID)
}

type CleanupReport struct {
	BlacklistRemoved   int
	BlacklistRemaining int
	ResetTokensRemoved int
}

// CleanupExpiredBlacklistedTokens drops blacklist entries whose token has
// expired, along with expired reset tokens.
func (s *AuthService) CleanupExpiredBlacklistedTokens(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	removed, err := s.blacklist.Sweep(ctx, s.tokens.IsExpired)
	if err != nil {
		return report, fmt.Errorf("sweep blacklist: %w", err)
	}
	report.BlacklistRemoved = removed

	resets, err := s.resets.SweepExpired(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep reset tokens: %w", err)
	}
	report.ResetTokensRemoved = resets

	remaining, err := s.blacklist.Len(ctx)
	if err != nil {
		return report, fmt.Errorf("blacklist size: %w", err)
	}
	report.BlacklistRemaining = remaining

	s.metrics.Swept("blacklist", removed)
	s.metrics.Swept("reset", resets)
	s.metrics.BlacklistSize(remaining)
	s.log.Debug().
		Int("blacklist_removed", removed).
		Int("blacklist_remaining", remaining).
		Int("reset_removed", resets).
		Msg("cleanup finished")
	return report, nil
}

// EnsureUser creates user with password unless the username is taken.
// It reports whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, user models.User, password string) (bool, error) {
	if _, err := s.users.FindByUsername(ctx, user.Username); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("find user: %w", err)
	}
	if password == "" {
		return false, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}
