// Package swrcache memoizes expensive, argument-deterministic operations in a
// byte store with stale-while-revalidate semantics.
//
// Each entry is an envelope holding either a computed result with a soft
// expiry time, or a placeholder written while the first computation runs in
// the background. Callers get a Result that is either Loaded or Loading; they
// never block on a background computation.
//
// Components:
//   - Provider: byte store with TTL (memory, Redis, Ristretto, BigCache).
//   - Codec[R]: (de)serializes R <-> []byte.
//   - Executor: fire-and-forget dispatcher for background computations.
//   - GenStore: optional per-key generations guarding async writes.
//
// Keys:
//
//	<namespace>/<ownerType>/<ownerID>/<operation>/<sha256(canonical args)>
//
// Timeline of an entry with ExpiresIn=E and SoftExpiresIn=S:
//
//	t0          written, soft expiry at t0+E-S
//	t0+E-S..    first read refreshes in the background, stale value served,
//	            soft expiry pushed out by S+RevalidateGrace
//	t0+E        hard expiry (unless extended)
//
// Usage:
//
//	op, _ := swrcache.Define("report", buildReport, swrcache.Options[Report]{
//		Provider:      prov,
//		Codec:         codec.JSON[Report]{},
//		ExpiresIn:     time.Hour,
//		SoftExpiresIn: 10 * time.Minute,
//	})
//	res, err := op.Call(ctx, ReportArgs{Month: "2024-05"})
//	if v, ok := res.Value(); ok { ... }
//
// Concurrent misses on different processes may all compute; the last write
// wins. Configure a GenStore to stop a slow background computation from
// overwriting a newer value or resurrecting an invalidated one.
package swrcache
