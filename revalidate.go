package swrcache

import (
	"context"

	"github.com/unkn0wn-root/swrcache/internal/wire"
)

// maybeRevalidate dispatches a refresh for a soft-stale entry. The entry's
// soft expiry is pushed out by SoftExpiresIn+RevalidateGrace first, so
// callers arriving while the refresh runs see a fresh entry and do not
// dispatch again. The caller keeps the value it already has.
func (cc *cache[R]) maybeRevalidate(ctx context.Context, key string, out outcome[R], fn thunk[R]) {
	if cc.softExpiresIn <= 0 || out.raw == nil || out.env.SoftExpiresAt.IsZero() {
		return
	}
	now := cc.now()
	if !now.After(out.env.SoftExpiresAt) {
		return
	}

	window := cc.softExpiresIn + cc.grace
	raw, err := wire.RewriteSoftExpiry(out.raw, now.Add(window))
	if err != nil {
		// Decoded a moment ago, so this only fires for a non-computed frame.
		cc.log.Debug("skip revalidation: cannot rewrite soft expiry", cc.fields.with("key", key, "err", err))
		return
	}
	cc.store(ctx, key, raw, window)

	cc.log.Debug("revalidating stale entry", cc.fields.with("key", key, "soft_expired_at", out.env.SoftExpiresAt))
	cc.hooks.Revalidated(key)
	cc.dispatch(ctx, key, fn, false)
}
