package genstore

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	gen     uint64
	touched time.Time
}

type LocalConfig struct {
	// Retention drops generations not bumped for this long. A dropped key
	// restarts from 0, which only matters for computations older than
	// Retention, so keep it above the longest background computation.
	// 0 keeps generations forever.
	Retention time.Duration
	// CleanupInterval runs Cleanup periodically; 0 disables the janitor.
	CleanupInterval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Local keeps generations in-process.
type Local struct {
	mu   sync.RWMutex
	gens map[string]localEntry
	cfg  LocalConfig

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ GenStore = (*Local)(nil)

func NewLocal(cfg LocalConfig) *Local {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Local{gens: make(map[string]localEntry), cfg: cfg}
	if cfg.CleanupInterval > 0 && cfg.Retention > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.janitor()
	}
	return s
}

func (s *Local) Snapshot(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e := s.gens[k]
	s.mu.RUnlock()
	return e.gen, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := s.cfg.Now()
	s.mu.Lock()
	e := s.gens[k]
	e.gen++
	e.touched = now
	s.gens[k] = e
	s.mu.Unlock()
	return e.gen, nil
}

// Cleanup drops generations idle for longer than the configured retention.
func (s *Local) Cleanup() {
	if s.cfg.Retention <= 0 {
		return
	}
	cutoff := s.cfg.Now().Add(-s.cfg.Retention)

	s.mu.Lock()
	for k, e := range s.gens {
		if e.touched.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of tracked keys.
func (s *Local) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gens)
}

func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}

func (s *Local) janitor() {
	defer s.wg.Done()
	t := time.NewTicker(s.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}
