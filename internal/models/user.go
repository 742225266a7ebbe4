package models

import "time"

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleUser     UserRole = "USER"
	UserRoleExpert   UserRole = "EXPERT"
	UserRoleOperator UserRole = "OPERATOR"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusLocked   UserStatus = "LOCKED"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	RealName     string
	Role         UserRole
	Status       UserStatus
	Avatar       *string
	LastLoginAt  *time.Time
	// TokensRevokedAt marks the last time all of the user's sessions were
	// revoked. Refresh tokens issued up to that second are no longer honoured.
	TokensRevokedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserSummary is the public projection of a user returned to clients.
type UserSummary struct {
	ID       string
	Username string
	RealName string
	Email    string
	Role     UserRole
	Avatar   *string
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		RealName: u.RealName,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}

// Session tracks one access token's issuance and activity window.
// ID is the access token itself.
type Session struct {
	ID           string
	UserID       string
	Username     string
	CreatedAt    time.Time
	LastAccessAt time.Time
	Active       bool
}

type PasswordResetToken struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}
