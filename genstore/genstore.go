// Package genstore keeps a monotonic generation counter per cache key.
//
// swrcache uses it, when configured, to order asynchronous writes: each
// dispatched computation bumps the key's generation and may only store its
// result if the generation is still the one it bumped. Invalidate bumps as
// well, so a slow computation cannot resurrect a busted entry.
package genstore

import "context"

// GenStore abstracts where generations live.
// Use Local for a single process, or Redis when several processes share one
// backing store.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Close releases resources (no-op ok).
	Close(ctx context.Context) error
}
