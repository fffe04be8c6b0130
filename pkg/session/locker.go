package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/pkg/ports"
)

// lockEntry holds the lock token and the reference count.
type lockEntry struct {
	token chan struct{}
	refs  int
}

// Locker implements ports.SessionLocker with one lock per session ID.
// Entries are reference counted and removed once nobody holds or waits.
type Locker struct {
	mu     sync.Mutex
	locks  map[string]*lockEntry
	logger *slog.Logger
}

// Option configures the Locker.
type Option func(*Locker)

// WithLogger configures a logger for the Locker.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locker) {
		l.logger = logger
	}
}

// NewLocker creates an in-process locker.
func NewLocker(opts ...Option) *Locker {
	l := &Locker{
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.SessionLocker = (*Locker)(nil)

// acquire gets or creates a lock entry and increments its reference count.
// Every acquire must be paired with a release.
func (l *Locker) acquire(sessionID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &lockEntry{token: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locker) release(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, sessionID)
	}
}

// Lock blocks until the lock for sessionID is held or ctx is done. The ttl
// is ignored: a process that dies takes its locks with it.
func (l *Locker) Lock(ctx context.Context, sessionID string, _ time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(sessionID)
	select {
	case entry.token <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID)
		return nil, ctx.Err()
	}
	l.logger.Debug("session locked", "session_id", sessionID)

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.token
			l.release(sessionID)
			l.logger.Debug("session unlocked", "session_id", sessionID)
		})
		return nil
	}, nil
}

// Len returns the number of sessions currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
