package genstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, err := NewRedis(RedisConfig{Client: client, Namespace: "ops", TTL: ttl, CloseClient: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return mr, s
}

func TestRedisBumpAndSnapshot(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t, 0)

	g, err := s.Snapshot(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, g)

	g, err = s.Bump(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g)
	g, err = s.Bump(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), g)

	g, err = s.Snapshot(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), g)
	assert.Zero(t, mr.TTL("gen:ops:k"), "no TTL configured")
}

func TestRedisBumpRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t, time.Minute)

	_, err := s.Bump(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("gen:ops:k"))

	mr.FastForward(2 * time.Minute)
	g, err := s.Snapshot(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, g, "expired generation reads as 0")
}

func TestRedisSnapshotParseError(t *testing.T) {
	mr, s := newTestRedis(t, 0)
	mr.Set("gen:ops:k", "not-a-number")

	_, err := s.Snapshot(context.Background(), "k")
	assert.ErrorContains(t, err, "redis gen parse")
}

func TestNewRedisNilClient(t *testing.T) {
	_, err := NewRedis(RedisConfig{})
	assert.ErrorIs(t, err, ErrNilClient)
}
