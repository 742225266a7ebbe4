package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

type Claims struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Role     string    `json:"role,omitempty"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and verifies HS512-signed access and refresh tokens.
// Every token carries a random jti, so two tokens issued for the same user
// in the same second still differ.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowF       func() time.Time
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return NewTokenManagerWithClock(cfg, time.Now)
}

func NewTokenManagerWithClock(cfg TokenConfig, now func() time.Time) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		nowF:       now,
	}
}

func (m *TokenManager) IssueAccessToken(userID, username, role string) (string, error) {
	return m.issue(userID, username, role, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(userID, username string) (string, error) {
	return m.issue(userID, username, "", TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(userID, username, role string, typ TokenType, ttl time.Duration) (string, error) {
	now := m.nowF()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}

// Parse verifies the signature, issuer and expiry of tokenStr.
func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(m.nowF),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc, opts...)
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// parseIgnoringExpiry verifies only the signature, so expired tokens still
// yield their claims.
func (m *TokenManager) parseIgnoringExpiry(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *TokenManager) parseTyped(tokenStr string, typ TokenType) (*Claims, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (m *TokenManager) ValidateAccess(tokenStr string) bool {
	_, err := m.parseTyped(tokenStr, TokenTypeAccess)
	return err == nil
}

func (m *TokenManager) ValidateRefresh(tokenStr string) bool {
	_, err := m.parseTyped(tokenStr, TokenTypeRefresh)
	return err == nil
}

// IsExpired reports whether a correctly signed token is past its expiry.
// Malformed or forged tokens return an error.
func (m *TokenManager) IsExpired(tokenStr string) (bool, error) {
	claims, err := m.parseIgnoringExpiry(tokenStr)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return true, nil
	}
	return !claims.ExpiresAt.Time.After(m.nowF()), nil
}

func (m *TokenManager) ExtractUserID(tokenStr string) (string, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (m *TokenManager) ExtractUsername(tokenStr string) (string, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (m *TokenManager) ExtractRole(tokenStr string) (string, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// IssuedAt returns the iat claim of a valid token, at second precision.
func (m *TokenManager) IssuedAt(tokenStr string) (time.Time, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.IssuedAt == nil {
		return time.Time{}, fmt.Errorf("token has no iat")
	}
	return claims.IssuedAt.Time, nil
}

// RemainingLifetime is zero for invalid or expired tokens.
func (m *TokenManager) RemainingLifetime(tokenStr string) time.Duration {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return 0
	}
	left := claims.ExpiresAt.Time.Sub(m.nowF())
	if left < 0 {
		return 0
	}
	return left
}

// ExpiresWithin reports whether a still valid token expires within d.
func (m *TokenManager) ExpiresWithin(tokenStr string, d time.Duration) bool {
	left := m.RemainingLifetime(tokenStr)
	return left > 0 && left < d
}

// Fingerprint identifies a token in logs without revealing it.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
