// Package memory is an in-process provider backed by a mutex-guarded map
// with per-entry TTLs. It implements provider.Adder.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/swrcache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Config struct {
	// CleanupInterval runs a janitor that drops expired entries. 0 disables it;
	// expired entries are then dropped lazily on access.
	CleanupInterval time.Duration
	// Now is the clock used for expiry. Defaults to time.Now.
	Now func() time.Time
}

type Memory struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var (
	_ pr.Provider = (*Memory)(nil)
	_ pr.Adder    = (*Memory)(nil)
)

func New(cfg Config) *Memory {
	p := &Memory{m: make(map[string]entry), now: cfg.Now}
	if p.now == nil {
		p.now = time.Now
	}
	if cfg.CleanupInterval > 0 {
		p.stopCh = make(chan struct{})
		p.wg.Add(1)
		go p.run(cfg.CleanupInterval)
	}
	return p
}

func (p *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if p.expired(e) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Memory) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	p.m[key] = p.entry(value, ttl)
	p.mu.Unlock()
	return true, nil
}

func (p *Memory) Add(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.m[key]; ok && !p.expired(e) {
		return false, nil
	}
	p.m[key] = p.entry(value, ttl)
	return true, nil
}

func (p *Memory) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

// TTL returns the remaining lifetime of key. ok=false on miss.
// A zero duration with ok=true means the entry never expires.
func (p *Memory) TTL(key string) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok || p.expired(e) {
		return 0, false
	}
	if e.exp.IsZero() {
		return 0, true
	}
	return e.exp.Sub(p.now()), true
}

// Len reports the number of stored entries, expired ones included until swept.
func (p *Memory) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

func (p *Memory) Close(_ context.Context) error {
	p.once.Do(func() {
		if p.stopCh != nil {
			close(p.stopCh)
			p.wg.Wait()
		}
	})
	return nil
}

func (p *Memory) entry(value []byte, ttl time.Duration) entry {
	v := make([]byte, len(value))
	copy(v, value)
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	return entry{v: v, exp: exp}
}

func (p *Memory) expired(e entry) bool {
	return !e.exp.IsZero() && p.now().After(e.exp)
}

func (p *Memory) run(interval time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Memory) sweep() {
	p.mu.Lock()
	for k, e := range p.m {
		if p.expired(e) {
			delete(p.m, k)
		}
	}
	p.mu.Unlock()
}
