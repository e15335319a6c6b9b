package swrcache

import (
	"context"

	"github.com/sourcegraph/conc/panics"

	ex "github.com/unkn0wn-root/swrcache/executor"
	"github.com/unkn0wn-root/swrcache/internal/wire"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

// outcome is what a call resolved to. raw is nil when the value never went
// through the store (fail-open path).
type outcome[R any] struct {
	raw     []byte
	env     wire.Envelope
	value   R
	pending bool
}

// fetchOrCompute returns the entry for key, populating it on a miss.
// attempt counts self-heal retries; a second undecodable read computes directly.
func (cc *cache[R]) fetchOrCompute(ctx context.Context, key string, fn thunk[R], attempt int) (outcome[R], error) {
	var (
		own      *outcome[R] // set when this call's populate computed synchronously
		dispatch bool
	)
	populate := func() ([]byte, error) {
		if !cc.background {
			o, err := cc.computeSync(ctx, key, fn)
			if err != nil {
				return nil, err
			}
			own = &o
			cc.bump(ctx, key)
			return o.raw, nil
		}
		// The task is dispatched once the placeholder is persisted, so a fast
		// computation cannot be overwritten by its own placeholder.
		dispatch = true
		return wire.EncodePlaceholder(), nil
	}

	raw, ours, err := cc.fetchOrPopulate(ctx, key, populate)
	if err != nil {
		if !isStoreRead(err) {
			return outcome[R]{}, err
		}
		cc.log.Warn("store read failed, computing directly", cc.fields.with("key", key, "err", err))
		cc.hooks.StoreReadFailed(key, err)
		return cc.failOpen(ctx, key, fn)
	}

	if ours {
		if own != nil {
			return *own, nil
		}
		if dispatch {
			cc.dispatch(ctx, key, fn, true)
		}
	}

	env, err := wire.Decode(raw)
	if err != nil {
		return cc.retryAfterHeal(ctx, key, fn, attempt, "corrupt", err)
	}

	if env.Pending {
		if cc.background {
			return outcome[R]{pending: true}, nil
		}
		// A background populator got there first and has not finished.
		cc.log.Debug("placeholder in foreground mode, computing", cc.fields.with("key", key))
		cc.hooks.PlaceholderFallback(key)
		o := own
		if o == nil {
			computed, err := cc.computeSync(ctx, key, fn)
			if err != nil {
				return outcome[R]{}, err
			}
			o = &computed
		}
		cc.bump(ctx, key)
		cc.store(ctx, key, o.raw, cc.expiresIn)
		return *o, nil
	}

	v, err := cc.codec.Decode(env.Payload)
	if err != nil {
		return cc.retryAfterHeal(ctx, key, fn, attempt, "value_decode", &SerializationError{Stage: StageDecode, Key: key, Err: err})
	}
	return outcome[R]{raw: raw, env: env, value: v}, nil
}

// fetchOrPopulate returns the stored bytes for key, or stores and returns the
// bytes produced by populate. ours reports whether the bytes came from populate.
// Only read failures are returned as *StoreError; write failures are logged.
func (cc *cache[R]) fetchOrPopulate(ctx context.Context, key string, populate func() ([]byte, error)) (raw []byte, ours bool, err error) {
	raw, ok, err := cc.provider.Get(ctx, key)
	if err != nil {
		return nil, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	if ok {
		return raw, false, nil
	}

	raw, err = populate()
	if err != nil {
		return nil, false, err
	}

	adder, atomic := cc.provider.(pr.Adder)
	if !atomic {
		cc.store(ctx, key, raw, cc.expiresIn)
		return raw, true, nil
	}

	stored, err := adder.Add(ctx, key, raw, cc.computeSetCost(key, raw), cc.expiresIn)
	if err != nil {
		cc.writeFailed(key, &StoreError{Op: "add", Key: key, Err: err})
		return raw, true, nil
	}
	if stored {
		return raw, true, nil
	}

	// Lost the race: serve the winner's entry.
	existing, ok, err := cc.provider.Get(ctx, key)
	if err == nil && ok {
		return existing, false, nil
	}
	// The winner's entry is already gone; keep ours unstored.
	return raw, true, nil
}

func (cc *cache[R]) retryAfterHeal(ctx context.Context, key string, fn thunk[R], attempt int, reason string, cause error) (outcome[R], error) {
	cc.selfHeal(ctx, key, reason, cause)
	if attempt > 0 {
		return cc.failOpen(ctx, key, fn)
	}
	return cc.fetchOrCompute(ctx, key, fn, attempt+1)
}

// failOpen serves a directly computed value without touching the store.
func (cc *cache[R]) failOpen(ctx context.Context, key string, fn thunk[R]) (outcome[R], error) {
	v, err := cc.computeValue(ctx, key, fn)
	if err != nil {
		return outcome[R]{}, err
	}
	return outcome[R]{value: v}, nil
}

// dispatch hands a computation to the executor. initial marks the task that
// replaces a placeholder; when it fails, panics or is rejected by the executor
// the placeholder is dropped so the next access retries instead of reporting
// "loading" until hard expiry.
func (cc *cache[R]) dispatch(ctx context.Context, key string, fn thunk[R], initial bool) {
	bctx := context.WithoutCancel(ctx)
	observed, guarded := cc.bump(bctx, key)

	task := func() {
		tctx := bctx
		if cc.bgTimeout > 0 {
			var cancel context.CancelFunc
			tctx, cancel = context.WithTimeout(bctx, cc.bgTimeout)
			defer cancel()
		}

		o, err := cc.computeRecover(tctx, key, fn)
		if err != nil {
			cc.backgroundFailed(tctx, key, err, initial)
			return
		}
		if guarded && !cc.genCurrent(tctx, key, observed) {
			cc.log.Debug("background write skipped (gen moved)", cc.fields.with("key", key, "gen", observed))
			cc.hooks.GenerationSkipped(key)
			return
		}
		cc.store(tctx, key, o.raw, cc.expiresIn)
	}

	if r, ok := cc.exec.(ex.Rejecter); ok {
		if !r.TryDispatch(task) {
			cc.backgroundFailed(bctx, key, ErrDispatchRejected, initial)
		}
		return
	}
	cc.exec.Dispatch(task)
}

// computeRecover is compute with a panic in fn reported as a *ComputeError.
func (cc *cache[R]) computeRecover(ctx context.Context, key string, fn thunk[R]) (o outcome[R], err error) {
	var pc panics.Catcher
	pc.Try(func() { o, err = cc.compute(ctx, key, fn) })
	if r := pc.Recovered(); r != nil {
		return outcome[R]{}, &ComputeError{Operation: cc.name, Key: key, Err: r.AsError()}
	}
	return o, err
}

func (cc *cache[R]) backgroundFailed(ctx context.Context, key string, err error, initial bool) {
	cc.log.Error("background computation failed", cc.fields.with("key", key, "err", err))
	cc.hooks.BackgroundComputeFailed(key, err)
	if initial {
		cc.dropPlaceholder(ctx, key)
	}
}

// dropPlaceholder deletes key only while it still holds a placeholder.
func (cc *cache[R]) dropPlaceholder(ctx context.Context, key string) {
	raw, ok, err := cc.provider.Get(ctx, key)
	if err != nil || !ok {
		return
	}
	if env, err := wire.Decode(raw); err == nil && env.Pending {
		if err := cc.provider.Del(ctx, key); err != nil {
			cc.writeFailed(key, &StoreError{Op: "del", Key: key, Err: err})
		}
	}
}

// computeSync is compute on the caller's goroutine, collapsed per key when
// CollapseForeground is set. A collapsed computation is shared, so it runs
// detached from the cancellation of whichever caller started it.
func (cc *cache[R]) computeSync(ctx context.Context, key string, fn thunk[R]) (outcome[R], error) {
	if cc.sf == nil {
		return cc.compute(ctx, key, fn)
	}
	shared := context.WithoutCancel(ctx)
	v, err, _ := cc.sf.Do(key, func() (any, error) {
		return cc.compute(shared, key, fn)
	})
	if err != nil {
		return outcome[R]{}, err
	}
	return v.(outcome[R]), nil
}

// compute runs fn and frames the result as a computed envelope.
func (cc *cache[R]) compute(ctx context.Context, key string, fn thunk[R]) (outcome[R], error) {
	v, err := cc.computeValue(ctx, key, fn)
	if err != nil {
		return outcome[R]{}, err
	}
	payload, err := cc.codec.Encode(v)
	if err != nil {
		return outcome[R]{}, &SerializationError{Stage: StageEncode, Key: key, Err: err}
	}
	env := wire.Envelope{
		SoftExpiresAt: cc.now().Add(cc.expiresIn - cc.softExpiresIn),
		Payload:       payload,
	}
	return outcome[R]{
		raw:   wire.EncodeComputed(env.SoftExpiresAt, payload),
		env:   env,
		value: v,
	}, nil
}

func (cc *cache[R]) computeValue(ctx context.Context, key string, fn thunk[R]) (R, error) {
	v, err := fn(ctx)
	if err != nil {
		var zero R
		return zero, &ComputeError{Operation: cc.name, Key: key, Err: err}
	}
	return v, nil
}
