package swrcache

import "context"

// Operation is a cached function of A. Safe for concurrent use.
type Operation[A, R any] struct {
	c  *cache[R]
	fn Func[A, R]
}

func (o *Operation[A, R]) Name() string { return o.c.name }

// Key returns the storage key for args.
func (o *Operation[A, R]) Key(args A) (string, error) {
	return o.c.key("", args)
}

// Call returns the cached result for args, computing or dispatching a
// computation on a miss. With backgrounding enabled (the default) the first
// call for a key returns a loading Result.
func (o *Operation[A, R]) Call(ctx context.Context, args A) (Result[R], error) {
	key, err := o.Key(args)
	if err != nil {
		return Result[R]{}, err
	}
	return o.c.call(ctx, key, o.bind(args))
}

// Invalidate removes the entry for args. Removing a missing entry is not an error.
func (o *Operation[A, R]) Invalidate(ctx context.Context, args A) error {
	key, err := o.Key(args)
	if err != nil {
		return err
	}
	return o.c.invalidate(ctx, key)
}

// Refresh computes on the caller's goroutine and overwrites the entry.
func (o *Operation[A, R]) Refresh(ctx context.Context, args A) (R, error) {
	key, err := o.Key(args)
	if err != nil {
		var zero R
		return zero, err
	}
	return o.c.refresh(ctx, key, o.bind(args))
}

func (o *Operation[A, R]) bind(args A) thunk[R] {
	return func(ctx context.Context) (R, error) { return o.fn(ctx, args) }
}

// invalidateAny backs Registry.Invalidate. Operations have no owner.
func (o *Operation[A, R]) invalidateAny(ctx context.Context, _ any, args any) error {
	a, ok := args.(A)
	if !ok {
		return ErrArgsType
	}
	return o.Invalidate(ctx, a)
}
