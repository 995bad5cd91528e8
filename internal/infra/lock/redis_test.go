package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_ExclusiveUntilUnlocked(t *testing.T) {
	l, _ := newLocker(t)
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "confirm:abc", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.TryLock(ctx, "confirm:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx, "confirm:abc", token))

	_, ok, err = l.TryLock(ctx, "confirm:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_UnlockWithForeignTokenKeepsLock(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	_, ok, err := l.TryLock(ctx, "confirm:xyz", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "confirm:xyz", "someone-else"))
	assert.True(t, mr.Exists("lock:confirm:xyz"))
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	_, ok, err := l.TryLock(ctx, "confirm:ttl", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(6 * time.Second)

	_, ok, err = l.TryLock(ctx, "confirm:ttl", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
