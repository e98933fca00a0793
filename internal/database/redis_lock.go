package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the lock only when it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out best-effort distributed locks
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a locker over an established redis client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// TryLock takes key for ttl if nobody holds it. The returned unlock func is
// only set when the lock was acquired.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	unlock := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return unlock, true, nil
}
