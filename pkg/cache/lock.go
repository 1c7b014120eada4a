package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the lock is still held by someone else
// after the wait time or the context runs out.
var ErrLockNotAcquired = errors.New("lock not acquired")

const lockRetryInterval = 25 * time.Millisecond

// unlockScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another holder is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Unlock releases a held lock.
type Unlock func(ctx context.Context) error

// RedisLocker is a single-instance Redis mutex keyed by an arbitrary name.
type RedisLocker struct {
	client *RedisClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker returns a locker whose locks expire after ttl and whose
// acquisition gives up after wait.
func NewRedisLocker(r *RedisClient, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: r, prefix: prefix, ttl: ttl, wait: wait}
}

// Lock blocks until key is acquired, wait elapses or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	name := l.prefix + key
	token := uuid.NewString()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.Client().SetNX(ctx, name, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return l.unlocker(name, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire %s: %w", name, ErrLockNotAcquired)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlocker(name, token string) Unlock {
	return func(ctx context.Context) error {
		if err := unlockScript.Run(ctx, l.client.Client(), []string{name}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", name, err)
		}
		return nil
	}
}
