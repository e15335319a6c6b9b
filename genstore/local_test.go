package genstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalBumpAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(LocalConfig{})
	t.Cleanup(func() { _ = s.Close(ctx) })

	if g, _ := s.Snapshot(ctx, "k"); g != 0 {
		t.Fatalf("missing key gen=%d, want 0", g)
	}
	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "k")
		if err != nil {
			t.Fatal(err)
		}
		if g != want {
			t.Fatalf("Bump=%d, want %d", g, want)
		}
	}
	if g, _ := s.Snapshot(ctx, "other"); g != 0 {
		t.Fatalf("keys must be independent, got %d", g)
	}
}

func TestLocalConcurrentBumpsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(LocalConfig{})
	t.Cleanup(func() { _ = s.Close(ctx) })

	const n = 64
	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, _ := s.Bump(ctx, "k")
			mu.Lock()
			seen[g] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("got %d distinct generations, want %d", len(seen), n)
	}
}

func TestLocalCleanupPrunesIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := NewLocal(LocalConfig{Retention: time.Minute, Now: func() time.Time { return now }})
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := s.Bump(ctx, "new"); err != nil {
		t.Fatal(err)
	}

	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("Len=%d after cleanup, want 1", s.Len())
	}
	if g, _ := s.Snapshot(ctx, "old"); g != 0 {
		t.Fatalf("expected pruned gen=0, got %d", g)
	}
	if g, _ := s.Snapshot(ctx, "new"); g != 1 {
		t.Fatalf("expected kept gen=1, got %d", g)
	}
}

func TestLocalCloseIdempotent(t *testing.T) {
	s := NewLocal(LocalConfig{Retention: time.Minute, CleanupInterval: time.Millisecond})
	_ = s.Close(context.Background())
	_ = s.Close(context.Background())
}
