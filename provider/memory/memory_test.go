package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemorySetGetDel(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)

	stored, err := p.Set(ctx, "k", []byte("v"), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	assert.NoError(t, p.Del(ctx, "k"))
	assert.NoError(t, p.Del(ctx, "k"), "deleting a missing key is not an error")
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCopiesInput(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	in := []byte("abc")
	_, _ = p.Set(ctx, "k", in, 1, 0)
	in[0] = 'X'
	v, _, _ := p.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	p := New(Config{Now: clk.Now})

	_, _ = p.Set(ctx, "k", []byte("v"), 1, 10*time.Second)
	ttl, ok := p.TTL("k")
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, ttl)

	clk.Advance(10 * time.Second)
	_, ok, _ = p.Get(ctx, "k")
	assert.True(t, ok, "entry is alive at exactly its expiry instant")

	clk.Advance(time.Nanosecond)
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, p.Len(), "expired entry is dropped on access")
}

func TestMemoryAdd(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	p := New(Config{Now: clk.Now})

	stored, err := p.Add(ctx, "k", []byte("first"), 1, time.Second)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = p.Add(ctx, "k", []byte("second"), 1, time.Second)
	require.NoError(t, err)
	assert.False(t, stored)
	v, _, _ := p.Get(ctx, "k")
	assert.Equal(t, []byte("first"), v)

	clk.Advance(2 * time.Second)
	stored, err = p.Add(ctx, "k", []byte("third"), 1, time.Second)
	require.NoError(t, err)
	assert.True(t, stored, "expired entries count as absent")
}

func TestMemoryAddConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := p.Add(ctx, "k", []byte("v"), 1, time.Minute); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestMemoryJanitorSweeps(t *testing.T) {
	ctx := context.Background()
	p := New(Config{CleanupInterval: 10 * time.Millisecond})
	defer p.Close(ctx)

	_, _ = p.Set(ctx, "k", []byte("v"), 1, time.Millisecond)
	assert.Eventually(t, func() bool { return p.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, p.Close(ctx))
	assert.NoError(t, p.Close(ctx), "Close is idempotent")
}
