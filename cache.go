package swrcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/swrcache/codec"
	ex "github.com/unkn0wn-root/swrcache/executor"
	gen "github.com/unkn0wn-root/swrcache/genstore"
	"github.com/unkn0wn-root/swrcache/internal/keys"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

// thunk is one invocation of the wrapped operation with owner and
// arguments already bound.
type thunk[R any] func(ctx context.Context) (R, error)

// cache is the per-operation engine shared by Operation and Method.
type cache[R any] struct {
	name      string
	ns        string
	ownerType string

	provider pr.Provider
	codec    c.Codec[R]
	exec     ex.Executor
	gen      gen.GenStore
	log      Logger
	hooks    Hooks
	fields   Fields

	enabled    bool
	background bool

	expiresIn      time.Duration
	softExpiresIn  time.Duration
	grace          time.Duration
	bgTimeout      time.Duration
	computeSetCost SetCostFunc
	now            func() time.Time

	sf *singleflight.Group // nil unless CollapseForeground
}

func newCache[R any](name, ownerType string, opts Options[R]) (*cache[R], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if opts.Provider == nil && !opts.Disabled {
		return nil, ErrNilProvider
	}
	if opts.Codec == nil && !opts.Disabled {
		return nil, ErrNilCodec
	}

	cc := &cache[R]{
		name:       name,
		ownerType:  ownerType,
		provider:   opts.Provider,
		codec:      opts.Codec,
		gen:        opts.GenStore,
		enabled:    !opts.Disabled,
		background: !opts.NoBackgrounding,
		bgTimeout:  opts.BackgroundTimeout,
	}

	// defaults
	cc.ns = coalesce(opts.Namespace, defaultNamespace)
	cc.exec = coalesce[ex.Executor](opts.Executor, ex.Default)
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.expiresIn = coalesce(opts.ExpiresIn, defaultExpiresIn)
	cc.softExpiresIn = opts.SoftExpiresIn
	cc.grace = coalesce(opts.RevalidateGrace, defaultRevalidateGrace)

	if opts.ComputeSetCost != nil {
		cc.computeSetCost = opts.ComputeSetCost
	} else {
		cc.computeSetCost = func(string, []byte) int64 { return 1 }
	}
	if opts.Now != nil {
		cc.now = opts.Now
	} else {
		cc.now = time.Now
	}
	if opts.CollapseForeground {
		cc.sf = &singleflight.Group{}
	}

	if cc.softExpiresIn < 0 || cc.softExpiresIn >= cc.expiresIn {
		return nil, fmt.Errorf("swrcache: SoftExpiresIn (%s) must be in [0, ExpiresIn=%s)", cc.softExpiresIn, cc.expiresIn)
	}

	cc.fields = Fields{"op": name}
	return cc, nil
}

func (cc *cache[R]) key(ownerID string, args any) (string, error) {
	k, err := keys.Derive(cc.ns, cc.ownerType, ownerID, cc.name, args)
	if err != nil {
		return "", &SerializationError{Stage: StageArgs, Err: err}
	}
	return k, nil
}

func (cc *cache[R]) call(ctx context.Context, key string, fn thunk[R]) (Result[R], error) {
	if !cc.enabled {
		v, err := cc.computeValue(ctx, key, fn)
		if err != nil {
			return Result[R]{}, err
		}
		return loaded(v), nil
	}

	out, err := cc.fetchOrCompute(ctx, key, fn, 0)
	if err != nil {
		return Result[R]{}, err
	}
	if out.pending {
		return loading[R](), nil
	}
	cc.maybeRevalidate(ctx, key, out, fn)
	return loaded(out.value), nil
}

func (cc *cache[R]) invalidate(ctx context.Context, key string) error {
	if !cc.enabled {
		return nil
	}
	var ierr InvalidateError
	if cc.gen != nil {
		if _, err := cc.gen.Bump(ctx, key); err != nil {
			cc.hooks.GenError(key, err)
			ierr.BumpErr = err
		}
	}
	if err := cc.provider.Del(ctx, key); err != nil {
		ierr.DelErr = err
	}
	if ierr.BumpErr != nil || ierr.DelErr != nil {
		ierr.Key = key
		cc.log.Warn("invalidate failed", cc.fields.with("key", key, "err", error(&ierr)))
		return &ierr
	}
	cc.log.Debug("invalidated", cc.fields.with("key", key))
	return nil
}

// refresh computes synchronously and overwrites the entry.
func (cc *cache[R]) refresh(ctx context.Context, key string, fn thunk[R]) (R, error) {
	if !cc.enabled {
		return cc.computeValue(ctx, key, fn)
	}
	o, err := cc.computeSync(ctx, key, fn)
	if err != nil {
		var zero R
		return zero, err
	}
	cc.bump(ctx, key)
	cc.store(ctx, key, o.raw, cc.expiresIn)
	return o.value, nil
}

// store writes raw and reports failures; the caller never sees them.
func (cc *cache[R]) store(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	ok, err := cc.provider.Set(ctx, key, raw, cc.computeSetCost(key, raw), ttl)
	if err != nil {
		cc.writeFailed(key, &StoreError{Op: "set", Key: key, Err: err})
		return
	}
	if !ok {
		cc.log.Debug("write rejected by provider (pressure)", cc.fields.with("key", key))
		cc.hooks.ProviderSetRejected(key)
	}
}

func (cc *cache[R]) writeFailed(key string, err error) {
	cc.log.Warn("store write failed", cc.fields.with("key", key, "err", err))
	cc.hooks.StoreWriteFailed(key, err)
}

// selfHeal drops an entry that could not be decoded.
func (cc *cache[R]) selfHeal(ctx context.Context, key, reason string, err error) {
	cc.log.Debug("dropping undecodable entry", cc.fields.with("key", key, "reason", reason, "err", err))
	cc.hooks.SelfHeal(key, reason)
	if derr := cc.provider.Del(ctx, key); derr != nil {
		cc.writeFailed(key, &StoreError{Op: "del", Key: key, Err: derr})
	}
}

// bump advances the key's generation. guarded=false when no GenStore is
// configured or the bump failed; the write then proceeds unconditionally.
func (cc *cache[R]) bump(ctx context.Context, key string) (g uint64, guarded bool) {
	if cc.gen == nil {
		return 0, false
	}
	g, err := cc.gen.Bump(ctx, key)
	if err != nil {
		cc.log.Warn("gen bump error", cc.fields.with("key", key, "err", err))
		cc.hooks.GenError(key, err)
		return 0, false
	}
	return g, true
}

// genCurrent reports whether observed is still the key's generation.
// Snapshot errors count as "moved" so the write is skipped.
func (cc *cache[R]) genCurrent(ctx context.Context, key string, observed uint64) bool {
	g, err := cc.gen.Snapshot(ctx, key)
	if err != nil {
		cc.log.Warn("gen snapshot error", cc.fields.with("key", key, "err", err))
		cc.hooks.GenError(key, err)
		return false
	}
	return g == observed
}

func isStoreRead(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Op == "get"
}
