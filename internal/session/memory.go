package session

import (
	"context"
	"sync"
	"time"

	"forestpest/auth/internal/models"
	"forestpest/auth/internal/security"
)

// userSessions is one user's session list. Its mutex makes append-then-evict
// atomic, so concurrent logins for the same user never leave more than max
// active sessions behind.
type userSessions struct {
	mu       sync.Mutex
	sessions []*models.Session
	dropped  bool
}

// MemoryRegistry is the in-process Registry.
type MemoryRegistry struct {
	mu    sync.RWMutex
	users map[string]*userSessions
	info  map[string]string
	max   int
	nowF  func() time.Time
}

func NewMemoryRegistry(maxSessions int) *MemoryRegistry {
	return NewMemoryRegistryWithClock(maxSessions, time.Now)
}

func NewMemoryRegistryWithClock(maxSessions int, now func() time.Time) *MemoryRegistry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &MemoryRegistry{
		users: make(map[string]*userSessions),
		info:  make(map[string]string),
		max:   maxSessions,
		nowF:  now,
	}
}

func (r *MemoryRegistry) lookup(userID string) *userSessions {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[userID]
}

// lockedList returns the user's list locked, creating it when needed. A list
// dropped by DeactivateAllForUser between lookup and lock is replaced.
func (r *MemoryRegistry) lockedList(userID string) *userSessions {
	for {
		r.mu.Lock()
		us, ok := r.users[userID]
		if !ok {
			us = &userSessions{}
			r.users[userID] = us
		}
		r.mu.Unlock()

		us.mu.Lock()
		if !us.dropped {
			return us
		}
		us.mu.Unlock()
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, userID, username, sessionID string) (models.Session, string, error) {
	now := r.nowF()
	s := &models.Session{
		ID:           sessionID,
		UserID:       userID,
		Username:     username,
		CreatedAt:    now,
		LastAccessAt: now,
		Active:       true,
	}

	us := r.lockedList(userID)
	defer us.mu.Unlock()

	us.sessions = append(us.sessions, s)

	active := 0
	var oldest *models.Session
	for _, cur := range us.sessions {
		if !cur.Active {
			continue
		}
		active++
		// Strict comparison keeps the earliest inserted on equal timestamps.
		if oldest == nil || cur.CreatedAt.Before(oldest.CreatedAt) {
			oldest = cur
		}
	}

	evicted := ""
	if active > r.max && oldest != nil {
		oldest.Active = false
		evicted = oldest.ID
	}
	return *s, evicted, nil
}

func (r *MemoryRegistry) Touch(ctx context.Context, userID, sessionID string) error {
	us := r.lookup(userID)
	if us == nil {
		return nil
	}
	us.mu.Lock()
	defer us.mu.Unlock()
	for _, s := range us.sessions {
		if s.ID == sessionID && s.Active {
			s.LastAccessAt = r.nowF()
		}
	}
	return nil
}

func (r *MemoryRegistry) DeactivateBySessionID(ctx context.Context, userID, sessionID string) (bool, error) {
	us := r.lookup(userID)
	if us == nil {
		return false, nil
	}
	us.mu.Lock()
	defer us.mu.Unlock()
	return deactivate(us, sessionID), nil
}

func deactivate(us *userSessions, sessionID string) bool {
	found := false
	for _, s := range us.sessions {
		if s.ID == sessionID && s.Active {
			s.Active = false
			found = true
		}
	}
	return found
}

func (r *MemoryRegistry) DeactivateAllForUser(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	us := r.users[userID]
	delete(r.users, userID)
	delete(r.info, userID)
	r.mu.Unlock()

	if us == nil {
		return nil, nil
	}

	us.mu.Lock()
	defer us.mu.Unlock()
	us.dropped = true

	var ids []string
	for _, s := range us.sessions {
		if s.Active {
			s.Active = false
			ids = append(ids, s.ID)
		}
	}
	us.sessions = nil
	return ids, nil
}

func (r *MemoryRegistry) ActiveSessionsFor(ctx context.Context, userID string) ([]models.Session, error) {
	us := r.lookup(userID)
	if us == nil {
		return []models.Session{}, nil
	}
	us.mu.Lock()
	defer us.mu.Unlock()

	out := make([]models.Session, 0, len(us.sessions))
	for _, s := range us.sessions {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemoryRegistry) allLists() []*userSessions {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lists := make([]*userSessions, 0, len(r.users))
	for _, us := range r.users {
		lists = append(lists, us)
	}
	return lists
}

func (r *MemoryRegistry) TerminateGlobalBySessionID(ctx context.Context, sessionID string) (bool, error) {
	found := false
	for _, us := range r.allLists() {
		us.mu.Lock()
		if deactivate(us, sessionID) {
			found = true
		}
		us.mu.Unlock()
	}
	return found, nil
}

func (r *MemoryRegistry) Resolve(ctx context.Context, userID, ref string) (string, bool, error) {
	if ref == "" {
		return "", false, nil
	}
	var lists []*userSessions
	if userID == "" {
		lists = r.allLists()
	} else if us := r.lookup(userID); us != nil {
		lists = []*userSessions{us}
	}

	for _, us := range lists {
		us.mu.Lock()
		for _, s := range us.sessions {
			if s.Active && (s.ID == ref || security.Fingerprint(s.ID) == ref) {
				us.mu.Unlock()
				return s.ID, true, nil
			}
		}
		us.mu.Unlock()
	}
	return "", false, nil
}

func (r *MemoryRegistry) SetInfo(ctx context.Context, userID, info string) error {
	r.mu.Lock()
	r.info[userID] = info
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) Info(ctx context.Context, userID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.info[userID]
	return info, ok, nil
}

func (r *MemoryRegistry) ClearInfo(ctx context.Context, userID string) error {
	r.mu.Lock()
	delete(r.info, userID)
	r.mu.Unlock()
	return nil
}
