package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	p, err := New(Config{Client: client, CloseClient: true, QueryTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return mr, p
}

func TestRedisNilClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisSetGetDel(t *testing.T) {
	ctx := context.Background()
	_, p := newTestRedis(t)

	_, ok, err := p.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte{0, 1, 2, 0xff}, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0, 1, 2, 0xff}, v, "values are byte transparent")

	require.NoError(t, p.Del(ctx, "k"))
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	mr, p := newTestRedis(t)

	_, err := p.Set(ctx, "k", []byte("v"), 1, 10*time.Second)
	require.NoError(t, err)

	d, ok, err := p.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, d)

	mr.FastForward(11 * time.Second)
	_, ok, err = p.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = p.TTL(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisNoExpiry(t *testing.T) {
	ctx := context.Background()
	_, p := newTestRedis(t)

	_, err := p.Set(ctx, "k", []byte("v"), 1, 0)
	require.NoError(t, err)
	d, ok, err := p.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, d)
}

func TestRedisAdd(t *testing.T) {
	ctx := context.Background()
	mr, p := newTestRedis(t)

	stored, err := p.Add(ctx, "k", []byte("first"), 1, time.Second)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = p.Add(ctx, "k", []byte("second"), 1, time.Second)
	require.NoError(t, err)
	assert.False(t, stored)

	v, _, _ := p.Get(ctx, "k")
	assert.Equal(t, []byte("first"), v)

	mr.FastForward(2 * time.Second)
	stored, err = p.Add(ctx, "k", []byte("third"), 1, time.Second)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestRedisServerDown(t *testing.T) {
	ctx := context.Background()
	mr, p := newTestRedis(t)
	mr.Close()

	_, ok, err := p.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
}
