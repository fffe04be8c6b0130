package ports

import (
	"context"
	"time"

	"github.com/aretw0/parlance/pkg/domain"
)

// SessionStore persists session snapshots.
// This allows a conversation to be stopped and resumed later.
type SessionStore interface {
	// Save persists the snapshot under its session ID.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock obtained from SessionLocker.
type UnlockFunc func(ctx context.Context) error

// SessionLocker serializes access to a session across processes, so two
// drivers never append to the same transcript.
type SessionLocker interface {
	// Lock blocks until the lock for sessionID is held or ctx is done.
	// The lock expires after ttl if it is never released.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}
