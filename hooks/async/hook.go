// Package asynchook moves hook delivery off the cache's goroutines.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	op, _ := swrcache.Define("report", buildReport, swrcache.Options[Report]{
//	    Provider: provider,
//	    Codec:    codec.JSON[Report]{},
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/swrcache"
)

type Hooks struct {
	inner   swrcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ swrcache.Hooks = (*Hooks)(nil)

func New(inner swrcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close delivers queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) SelfHeal(k, r string)               { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) StoreReadFailed(k string, e error)  { h.try(func() { h.inner.StoreReadFailed(k, e) }) }
func (h *Hooks) StoreWriteFailed(k string, e error) { h.try(func() { h.inner.StoreWriteFailed(k, e) }) }
func (h *Hooks) ProviderSetRejected(k string)       { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) PlaceholderFallback(k string)       { h.try(func() { h.inner.PlaceholderFallback(k) }) }
func (h *Hooks) Revalidated(k string)               { h.try(func() { h.inner.Revalidated(k) }) }
func (h *Hooks) GenerationSkipped(k string)         { h.try(func() { h.inner.GenerationSkipped(k) }) }
func (h *Hooks) GenError(k string, e error)         { h.try(func() { h.inner.GenError(k, e) }) }
func (h *Hooks) BackgroundComputeFailed(k string, e error) {
	h.try(func() { h.inner.BackgroundComputeFailed(k, e) })
}
