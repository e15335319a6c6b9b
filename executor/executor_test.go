package executor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoroutinesRunsAndWaits(t *testing.T) {
	var g Goroutines
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		g.Dispatch(func() { n.Add(1) })
	}
	g.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestGoroutinesRecoversPanics(t *testing.T) {
	var got atomic.Value
	g := Goroutines{OnPanic: func(r *panics.Recovered) { got.Store(r.Value) }}
	g.Dispatch(func() { panic("boom") })
	g.Wait()
	assert.Equal(t, "boom", got.Load())
}

func TestInlineRunsSynchronously(t *testing.T) {
	ran := false
	Inline{}.Dispatch(func() { ran = true })
	assert.True(t, ran)

	var recovered *panics.Recovered
	Inline{OnPanic: func(r *panics.Recovered) { recovered = r }}.Dispatch(func() { panic("inline") })
	require.NotNil(t, recovered)
	assert.Error(t, recovered.AsError())
}

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2, 16)
	var n atomic.Int32
	for i := 0; i < 8; i++ {
		p.Dispatch(func() { n.Add(1) })
	}
	p.Close()
	assert.Equal(t, int32(8), n.Load())
}

func TestPoolDropsWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	var drops atomic.Int32
	p.OnDrop = func() { drops.Add(1) }

	block := make(chan struct{})
	started := make(chan struct{})
	p.Dispatch(func() { close(started); <-block })
	<-started

	p.Dispatch(func() {}) // fills the queue
	p.Dispatch(func() {}) // dropped
	assert.Equal(t, int32(1), drops.Load())

	close(block)
	p.Close()

	p.Dispatch(func() { t.Errorf("task ran after Close") })
	assert.Equal(t, int32(2), drops.Load(), "dispatch after Close is dropped")
	p.Close()
}

func TestPoolTryDispatchReportsDrops(t *testing.T) {
	p := NewPool(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})
	require.True(t, p.TryDispatch(func() { close(started); <-block }))
	<-started

	assert.True(t, p.TryDispatch(func() {}))
	assert.False(t, p.TryDispatch(func() { t.Errorf("rejected task ran") }))

	close(block)
	p.Close()
	assert.False(t, p.TryDispatch(func() { t.Errorf("task ran after Close") }))
}

func TestPoolRecoversPanics(t *testing.T) {
	var mu sync.Mutex
	var got []any
	p := NewPool(1, 4)
	p.OnPanic = func(r *panics.Recovered) {
		mu.Lock()
		got = append(got, r.Value)
		mu.Unlock()
	}
	p.Dispatch(func() { panic("first") })
	p.Dispatch(func() {})
	done := make(chan struct{})
	go func() { p.Close(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not drain after a panicking task")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{"first"}, got)
}
