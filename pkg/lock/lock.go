package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only when it still holds our token, so an
// expired lock re-acquired by another worker is never released by us.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Locker hands out best-effort mutual-exclusion locks backed by Redis.
type Locker struct {
	client *redis.Client
}

// NewLocker constructs a Locker.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Lock is a held lock that must be released by its owner.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// TryAcquire attempts to take the lock without blocking. It returns nil and
// false when another holder owns the key.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	if l == nil || l.client == nil {
		return nil, false, fmt.Errorf("locker not configured")
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{client: l.client, key: key, token: token}, true, nil
}

// Release frees the lock if it is still held by this owner.
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil || lk.client == nil {
		return nil
	}
	if err := lk.client.Eval(ctx, releaseScript, []string{lk.key}, lk.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", lk.key, err)
	}
	return nil
}
