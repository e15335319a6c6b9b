package swrcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/swrcache/codec"
	ex "github.com/unkn0wn-root/swrcache/executor"
	gen "github.com/unkn0wn-root/swrcache/genstore"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

// SetCostFunc returns the cost passed to Provider.Set for an encoded entry.
type SetCostFunc func(key string, raw []byte) int64

// Func is a cached operation without an owner (class-level).
type Func[A, R any] func(ctx context.Context, args A) (R, error)

// MethodFunc is a cached operation bound to an owner value.
type MethodFunc[O, A, R any] func(ctx context.Context, owner O, args A) (R, error)

// Identifier is implemented by owners with a stable identity.
// Owners without it share one empty identity segment in the key.
type Identifier interface {
	CacheID() string
}

// Options tune a cached operation.
// Only Provider and Codec are required; others have sensible defaults.
type Options[R any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[R]

	Executor  ex.Executor // nil => executor.Default (goroutine per task)
	Namespace string      // first key segment; "" => "swrcache"
	OwnerType string      // owner key segment; "" => Go type name of the owner (methods only)

	ExpiresIn       time.Duration // hard TTL; 0 => 30m
	SoftExpiresIn   time.Duration // stale window before hard expiry; 0 => no background revalidation
	RevalidateGrace time.Duration // debounce extension after a soft-stale hit; 0 => 10m

	NoBackgrounding   bool          // compute on the caller's goroutine; never return a placeholder
	BackgroundTimeout time.Duration // deadline for dispatched computations; 0 => none
	Disabled          bool          // bypass the store entirely; every call computes

	CollapseForeground bool         // share one in-process computation among concurrent synchronous callers of a key; it ignores caller cancellation
	GenStore           gen.GenStore // nil => background writes overwrite unconditionally

	Logger         Logger           // if nil, NopLogger is used
	Hooks          Hooks            // if nil, NopHooks is used
	ComputeSetCost SetCostFunc      // default 1
	Now            func() time.Time // default time.Now
}

// Define builds an owner-less cached operation.
func Define[A, R any](name string, fn Func[A, R], opts Options[R]) (*Operation[A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	cc, err := newCache[R](name, opts.OwnerType, opts)
	if err != nil {
		return nil, err
	}
	return &Operation[A, R]{c: cc, fn: fn}, nil
}

// DefineMethod builds a cached operation keyed by owner identity as well as
// arguments. The owner's type name fills the owner segment unless
// Options.OwnerType is set.
func DefineMethod[O, A, R any](name string, fn MethodFunc[O, A, R], opts Options[R]) (*Method[O, A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	cc, err := newCache[R](name, coalesce(opts.OwnerType, typeName[O]()), opts)
	if err != nil {
		return nil, err
	}
	return &Method[O, A, R]{c: cc, fn: fn}, nil
}
