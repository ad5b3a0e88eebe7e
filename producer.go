package atoms

import (
	"context"
	"errors"
)

// ErrRefreshUnsupported is returned by the default Refresh hook for flavors
// that never support asynchronous recomputation.
var ErrRefreshUnsupported = errors.New("atoms: atom does not support refresh")

// Producer is the shape every atom flavor implements: value/state/task/
// publisher/observable/async-sequence/custom-resettable all differ only in
// which of these hooks they override. The kernel dispatches through this
// interface uniformly and never special-cases a flavor.
type Producer[T any] interface {
	// Produce computes the initial or current value. It may call Watch on
	// ctx to record dependencies on other atoms.
	Produce(ctx *ResolveCtx) (T, error)

	// ManageOverridden is handed an override-supplied value and returns the
	// value that should actually be stored, after installing any side
	// effects the flavor needs (e.g. wiring a task handle).
	ManageOverridden(v T, ctx *ResolveCtx) (T, error)

	// Refresh asynchronously recomputes the value. It must respect ctx
	// cancellation; flavors that don't support refresh return
	// ErrRefreshUnsupported.
	Refresh(ctx context.Context, rctx *ResolveCtx) (T, error)

	// ShouldUpdate is the equality policy deciding whether a newly produced
	// value actually triggers propagation.
	ShouldUpdate(newVal, oldVal T) bool

	// PerformUpdate schedules the body that performs propagation. The
	// default runs body synchronously; some flavors may defer it to batch
	// with a UI frame.
	PerformUpdate(body func())

	// Updated is a user-defined side effect invoked after a successful
	// update has fully propagated.
	Updated(newVal, oldVal T, ctx *ResolveCtx)
}

// BaseProducer supplies §4.1's default hook behavior so flavors embed it and
// override only what they need, mirroring how the teacher's BaseExtension
// supplies no-op defaults for Extension.
type BaseProducer[T any] struct{}

// ManageOverridden by default stores the override value unchanged.
func (BaseProducer[T]) ManageOverridden(v T, _ *ResolveCtx) (T, error) {
	return v, nil
}

// Refresh by default is unsupported.
func (BaseProducer[T]) Refresh(_ context.Context, _ *ResolveCtx) (T, error) {
	var zero T
	return zero, ErrRefreshUnsupported
}

// ShouldUpdate by default always updates.
func (BaseProducer[T]) ShouldUpdate(_, _ T) bool {
	return true
}

// PerformUpdate by default runs body synchronously.
func (BaseProducer[T]) PerformUpdate(body func()) {
	body()
}

// Updated by default does nothing.
func (BaseProducer[T]) Updated(_, _ T, _ *ResolveCtx) {}

// CustomResetter is an optional extension a Producer may additionally
// implement to become a "custom-resettable" flavor (§4.4's reset overload,
// §8 property 8). ResetCustom invokes ResetHook rather than touching the atom's
// own cache or state.
type CustomResetter interface {
	ResetHook(sc *StoreContext)
}
