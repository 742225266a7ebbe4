// Package session tracks the active sessions of each user and enforces the
// per-user concurrent session cap.
package session

import (
	"context"

	"forestpest/auth/internal/models"
)

const DefaultMaxSessions = 5

// Registry owns every Session record. Callers only receive copies.
type Registry interface {
	// Register appends a new active session. When the user then holds more
	// than the cap, the oldest active session is deactivated and its id is
	// returned as evicted so the caller can revoke it.
	Register(ctx context.Context, userID, username, sessionID string) (s models.Session, evicted string, err error)
	Touch(ctx context.Context, userID, sessionID string) error
	DeactivateBySessionID(ctx context.Context, userID, sessionID string) (bool, error)
	// DeactivateAllForUser returns the ids of the sessions that were active
	// and forgets the user's sessions and session info.
	DeactivateAllForUser(ctx context.Context, userID string) ([]string, error)
	ActiveSessionsFor(ctx context.Context, userID string) ([]models.Session, error)
	// TerminateGlobalBySessionID deactivates sessionID whichever user owns it.
	TerminateGlobalBySessionID(ctx context.Context, sessionID string) (bool, error)
	// Resolve finds the active session that ref names, either by its id or by
	// security.Fingerprint of its id, and returns the id. An empty userID
	// searches every user.
	Resolve(ctx context.Context, userID, ref string) (string, bool, error)

	SetInfo(ctx context.Context, userID, info string) error
	Info(ctx context.Context, userID string) (string, bool, error)
	ClearInfo(ctx context.Context, userID string) error
}
