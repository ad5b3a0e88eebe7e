package flavors

import "github.com/reactivestate/atoms"

// StateStats is the coordinator a State atom keeps: a running count of how
// many times it has actually been updated (shouldUpdate returned true and
// the value committed), a texture mirroring the teacher's pattern of a
// long-lived per-executor scratch object threaded through ResolveCtx.
type StateStats struct {
	Updates int
}

// stateProducer is a mutable primitive cell. It behaves like Value on first
// access, but installs a StateStats coordinator and increments it on every
// successful update via the Updated hook — useful for tests asserting S1's
// "subscription fired once" kind of property without instrumenting the
// subscriber itself.
type stateProducer[T any] struct {
	atoms.BaseProducer[T]
	initial T
}

// State creates a mutable primitive atom seeded with initial, meant to be
// written to with atoms.Set/atoms.Modify.
func State[T any](initial T) atoms.Producer[T] {
	return &stateProducer[T]{initial: initial}
}

func (p *stateProducer[T]) Produce(ctx *atoms.ResolveCtx) (T, error) {
	if ctx.Coordinator() == nil {
		ctx.SetCoordinator(&StateStats{})
	}
	return p.initial, nil
}

func (p *stateProducer[T]) Updated(_, _ T, ctx *atoms.ResolveCtx) {
	if stats, ok := ctx.Coordinator().(*StateStats); ok {
		stats.Updates++
	}
}
