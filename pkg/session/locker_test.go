package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockLifecycle(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		unlock, err := l.Lock(ctx, fmt.Sprintf("session-%d", i), time.Minute)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	}
	assert.Equal(t, 0, l.Len(), "locks must not leak after unlock")
}

func TestLocker_MutualExclusion(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "shared", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			_ = unlock(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, l.Len())
}

func TestLocker_ContextCanceled(t *testing.T) {
	l := NewLocker()
	unlock, err := l.Lock(context.Background(), "busy", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "busy", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(context.Background()))
	require.NoError(t, unlock(context.Background()), "unlock is idempotent")
	assert.Equal(t, 0, l.Len())
}

func TestLocker_IndependentSessions(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a", 0)
	require.NoError(t, err)
	unlockB, err := l.Lock(ctx, "b", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())

	require.NoError(t, unlockA(ctx))
	require.NoError(t, unlockB(ctx))
}
