package swrcache

import (
	"errors"
	"fmt"
)

var (
	// ErrLoading is returned (or panicked with, by MustValue) when a result is
	// read while its first computation is still in flight.
	ErrLoading = errors.New("swrcache: result is still loading")

	ErrAlreadyDefined   = errors.New("swrcache: operation already defined")
	ErrUnknownOperation = errors.New("swrcache: unknown operation")
	ErrNilProvider      = errors.New("swrcache: provider is required")
	ErrNilCodec         = errors.New("swrcache: codec is required")
	ErrNilFunc          = errors.New("swrcache: compute func is required")
	ErrEmptyName        = errors.New("swrcache: operation name is required")
	ErrArgsType         = errors.New("swrcache: argument type mismatch")

	// ErrDispatchRejected is reported to Hooks.BackgroundComputeFailed when the
	// executor refuses a background computation.
	ErrDispatchRejected = errors.New("swrcache: executor rejected background computation")
)

// Serialization stages.
const (
	StageArgs   = "args"   // argument canonicalization; propagated
	StageEncode = "encode" // result encoding; propagated in foreground, logged in background
	StageDecode = "decode" // stored payload decoding; never returned, degrades to a miss
)

type SerializationError struct {
	Stage string
	Key   string // empty for StageArgs
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("swrcache: %s serialization failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("swrcache: %s serialization failed for %q: %v", e.Stage, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ComputeError wraps a failure of the cached operation itself.
type ComputeError struct {
	Operation string
	Key       string
	Err       error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("swrcache: %s (%q) failed: %v", e.Operation, e.Key, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// StoreError reports a backing store failure. Read failures make the call
// fail open (compute directly); write failures are only logged.
type StoreError struct {
	Op  string // "get", "set", "add", "del"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("swrcache: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
