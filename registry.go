package swrcache

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type registered interface {
	Name() string
	invalidateAny(ctx context.Context, owner, args any) error
}

// Registry holds cached operations by name so they can be invalidated
// without a typed handle, e.g. from an admin endpoint or a message consumer.
// The zero value is not usable; use NewRegistry.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]registered
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]registered)}
}

// Register defines an operation and adds it to reg.
// A name can be registered once; a second attempt returns ErrAlreadyDefined.
func Register[A, R any](reg *Registry, name string, fn Func[A, R], opts Options[R]) (*Operation[A, R], error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, dup := reg.ops[name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyDefined, name)
	}
	op, err := Define(name, fn, opts)
	if err != nil {
		return nil, err
	}
	reg.ops[name] = op
	return op, nil
}

// RegisterMethod is Register for owner-bound operations.
func RegisterMethod[O, A, R any](reg *Registry, name string, fn MethodFunc[O, A, R], opts Options[R]) (*Method[O, A, R], error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, dup := reg.ops[name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyDefined, name)
	}
	m, err := DefineMethod(name, fn, opts)
	if err != nil {
		return nil, err
	}
	reg.ops[name] = m
	return m, nil
}

// Invalidate removes the entry of the owner-less operation name for args.
// args must have the operation's argument type (ErrArgsType otherwise).
func (r *Registry) Invalidate(ctx context.Context, name string, args any) error {
	return r.InvalidateFor(ctx, name, nil, args)
}

// InvalidateFor removes the entry of a registered operation for owner and
// args. owner is ignored for owner-less operations.
func (r *Registry) InvalidateFor(ctx context.Context, name string, owner, args any) error {
	r.mu.RLock()
	op, ok := r.ops[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op.invalidateAny(ctx, owner, args)
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
