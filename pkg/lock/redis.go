package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the expiry only if the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var errLockLost = errors.New("lock no longer held")

// RedisLocker is a Locker shared by every process talking to the same Redis.
// The lease is extended every ttl/3 while held, so work may outlast ttl; a
// holder that dies loses the lock after ttl.
type RedisLocker struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		rdb:       rdb,
		prefix:    prefix,
		ttl:       ttl,
		retryWait: 50 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", redisKey, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stopRenew := renewEvery(l.ttl/3, func(ctx context.Context) error {
		n, err := extendScript.Run(ctx, l.rdb, []string{redisKey}, token, l.ttl.Milliseconds()).Int()
		if err != nil {
			return err
		}
		if n == 0 {
			return errLockLost
		}
		return nil
	})

	return func() {
		stopRenew()
		// Release must not depend on the caller's context, which may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			// The TTL reclaims the key eventually.
			return
		}
	}, nil
}

// renewEvery calls extend at each interval until the returned stop is called
// or extend reports the lock as lost. Transient errors are retried on the
// next tick, the ttl covers the gap.
func renewEvery(interval time.Duration, extend func(ctx context.Context) error) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				err := extend(ctx)
				cancel()
				if errors.Is(err, errLockLost) {
					return
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-finished
	}
}
