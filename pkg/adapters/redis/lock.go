package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/parlance/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when the lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire session lock")

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// renewScript extends the lock only if it still holds our token.
var renewScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.SessionLocker using SET NX PX. A held lock is
// renewed in the background until it is released, so it outlives its TTL
// for as long as the holder runs.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration
	renew    time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets the polling interval while waiting for a lock.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithRenewInterval sets how often a held lock is extended. The default is a
// third of the TTL passed to Lock.
func WithRenewInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.renew = d
		}
	}
}

// NewLocker creates a Redis locker. Keys are <prefix>lock:<session id>.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.SessionLocker = (*Locker)(nil)

// Lock polls until the lock is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, sessionID string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + sessionID
	token := uuid.NewString()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if ok {
			stop := l.keepAlive(lockKey, token, ttl)
			var once sync.Once
			return func(ctx context.Context) error {
				var err error
				once.Do(func() {
					stop()
					err = releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
				})
				return err
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive extends the lock every renew interval until the returned func is
// called or the token is no longer ours.
func (l *Locker) keepAlive(lockKey, token string, ttl time.Duration) func() {
	if ttl <= 0 {
		return func() {}
	}
	every := l.renew
	if every <= 0 {
		every = ttl / 3
	}
	if every <= 0 {
		every = ttl
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		ms := strconv.FormatInt(ttl.Milliseconds(), 10)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := renewScript.Run(ctx, l.client, []string{lockKey}, token, ms).Int()
				if err == nil && n == 0 {
					return
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
