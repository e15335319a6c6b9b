package swrcache

import "fmt"

// Result is what a cached call hands back: either a value or the loading
// state reported while the first background computation is still running.
type Result[R any] struct {
	value   R
	loading bool
}

func loaded[R any](v R) Result[R] { return Result[R]{value: v} }
func loading[R any]() Result[R]   { return Result[R]{loading: true} }

func (r Result[R]) Loading() bool { return r.loading }
func (r Result[R]) Loaded() bool  { return !r.loading }

// Value returns the value and true, or the zero value and false while loading.
func (r Result[R]) Value() (R, bool) {
	return r.value, !r.loading
}

// Get returns ErrLoading while loading.
func (r Result[R]) Get() (R, error) {
	if r.loading {
		var zero R
		return zero, ErrLoading
	}
	return r.value, nil
}

// MustValue panics with ErrLoading while loading.
func (r Result[R]) MustValue() R {
	if r.loading {
		panic(ErrLoading)
	}
	return r.value
}

// String formats the value, so a loaded Result prints like the value itself.
func (r Result[R]) String() string {
	if r.loading {
		return "<loading>"
	}
	return fmt.Sprint(r.value)
}
