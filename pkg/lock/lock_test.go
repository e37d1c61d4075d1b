package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SameKeyIsSerialized(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(ctx, "note-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	unlockA, err := km.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := km.Lock(ctx, "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_ContextCancelWhileWaiting(t *testing.T) {
	km := NewKeyedMutex()

	unlock, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, km.Len())
}

func TestRenewEvery(t *testing.T) {
	tests := []struct {
		name       string
		result     error
		wantAtMost int32
	}{
		{name: "keeps extending while held", result: nil},
		{name: "transient errors are retried", result: errors.New("connection reset")},
		{name: "stops once the lock is lost", result: errLockLost, wantAtMost: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			stop := renewEvery(5*time.Millisecond, func(ctx context.Context) error {
				atomic.AddInt32(&calls, 1)
				return tt.result
			})
			time.Sleep(60 * time.Millisecond)
			stop()
			stop()

			after := atomic.LoadInt32(&calls)
			if tt.wantAtMost > 0 {
				assert.Equal(t, tt.wantAtMost, after)
			} else {
				assert.Greater(t, after, int32(2))
			}
			time.Sleep(20 * time.Millisecond)
			assert.Equal(t, after, atomic.LoadInt32(&calls), "no renewals after stop")
		})
	}
}
