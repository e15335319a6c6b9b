package swrcache

import (
	"context"
	"reflect"
)

// Method is a cached function of an owner value and A. Entries are keyed by
// the owner's identity (see Identifier) as well as by args.
type Method[O, A, R any] struct {
	c  *cache[R]
	fn MethodFunc[O, A, R]
}

func (m *Method[O, A, R]) Name() string { return m.c.name }

// Key returns the storage key for owner and args.
func (m *Method[O, A, R]) Key(owner O, args A) (string, error) {
	return m.c.key(ownerID(owner), args)
}

// Call is Operation.Call for a specific owner.
func (m *Method[O, A, R]) Call(ctx context.Context, owner O, args A) (Result[R], error) {
	key, err := m.Key(owner, args)
	if err != nil {
		return Result[R]{}, err
	}
	return m.c.call(ctx, key, m.bind(owner, args))
}

func (m *Method[O, A, R]) Invalidate(ctx context.Context, owner O, args A) error {
	key, err := m.Key(owner, args)
	if err != nil {
		return err
	}
	return m.c.invalidate(ctx, key)
}

func (m *Method[O, A, R]) Refresh(ctx context.Context, owner O, args A) (R, error) {
	key, err := m.Key(owner, args)
	if err != nil {
		var zero R
		return zero, err
	}
	return m.c.refresh(ctx, key, m.bind(owner, args))
}

func (m *Method[O, A, R]) bind(owner O, args A) thunk[R] {
	return func(ctx context.Context) (R, error) { return m.fn(ctx, owner, args) }
}

func (m *Method[O, A, R]) invalidateAny(ctx context.Context, owner any, args any) error {
	o, ok := owner.(O)
	if !ok {
		return ErrArgsType
	}
	a, ok := args.(A)
	if !ok {
		return ErrArgsType
	}
	return m.Invalidate(ctx, o, a)
}

func ownerID(owner any) string {
	if id, ok := owner.(Identifier); ok {
		return id.CacheID()
	}
	return ""
}

// typeName is the default owner segment: the type's name with pointers
// stripped, e.g. "Account" for *Account.
func typeName[O any]() string {
	t := reflect.TypeOf((*O)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}
