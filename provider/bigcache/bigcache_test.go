package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigcacheRequiresLifeWindow(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBigcacheSetGetDel(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{LifeWindow: time.Minute})
	require.NoError(t, err)
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	assert.NoError(t, p.Del(ctx, "k"))
	assert.NoError(t, p.Del(ctx, "k"), "deleting a missing key is not an error")
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
}
