package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/redislock"
)

const key = "inmobiliaria:promociones:barrido"

func newLocker(t *testing.T) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l := redislock.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = l.Close() })
	return l, mr
}

func TestTryLock_UnSoloDueno(t *testing.T) {
	ctx := context.Background()
	l, mr := newLocker(t)

	release, ok, err := l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(key))

	_, ok, err = l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "la segunda instancia no toma el lock")

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(key))

	_, ok, err = l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryLock_ExpiradoNoLiberaAlNuevoDueno(t *testing.T) {
	ctx := context.Background()
	l, mr := newLocker(t)

	staleRelease, ok, err := l.TryLock(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = l.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "vencido el ttl otro proceso toma el lock")
	owner, err := mr.Get(key)
	require.NoError(t, err)

	require.NoError(t, staleRelease(ctx))
	current, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, owner, current, "el dueño anterior no borra el lock ajeno")
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := redislock.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = redislock.New(context.Background(), "http://no-es-redis")
	assert.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = redislock.New(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}
