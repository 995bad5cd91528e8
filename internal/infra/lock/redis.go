package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
)

const keyPrefix = "lock:"

// Only the holder of the token may release the key.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Err()
}

// NoopLocker always grants the lock. Used when Redis is not configured;
// confirmation then relies on the database constraints alone.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "noop", true, nil
}

func (NoopLocker) Unlock(context.Context, string, string) error { return nil }

var (
	_ domain.Locker = (*RedisLocker)(nil)
	_ domain.Locker = NoopLocker{}
)
