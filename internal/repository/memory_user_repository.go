package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"forestpest/auth/internal/models"
)

// MemoryUserRepository backs the service when no Postgres DSN is configured.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// Create stores user, assigning an id when it has none.
func (r *MemoryUserRepository) Create(ctx context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != "" && strings.EqualFold(u.Email, user.Email)) {
			return ErrUserConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if email == "" {
		return models.User{}, ErrUserNotFound
	}
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = append([]byte(nil), hash...)
		u.UpdatedAt = time.Now()
	})
}

func (r *MemoryUserRepository) UpdateLastLoginTime(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LastLoginAt = &at })
}

func (r *MemoryUserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	return r.update(id, func(u *models.User) {
		u.Status = status
		u.UpdatedAt = time.Now()
	})
}

func (r *MemoryUserRepository) RevokeTokens(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.TokensRevokedAt = &at
		u.UpdatedAt = time.Now()
	})
}

func (r *MemoryUserRepository) update(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}
