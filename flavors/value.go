package flavors

import "github.com/reactivestate/atoms"

// valueProducer is the simplest flavor: a primitive cell holding a fixed
// initial value, with no dependencies of its own. It uses every
// BaseProducer default.
type valueProducer[T any] struct {
	atoms.BaseProducer[T]
	initial T
}

// Value creates a primitive, non-derived atom producer seeded with initial.
// It never calls Watch — it has nothing to depend on — so the resulting
// atom is always a graph leaf.
func Value[T any](initial T) atoms.Producer[T] {
	return &valueProducer[T]{initial: initial}
}

func (p *valueProducer[T]) Produce(_ *atoms.ResolveCtx) (T, error) {
	return p.initial, nil
}

// Derive creates a computed atom: its value is produced entirely by fn,
// which typically calls atoms.Watch on other atoms to read their current
// value and record a dependency edge. Corresponds to spec.md's "observable"
// flavor — no declarative dependency list, purely the dynamic one fn builds
// at evaluation time.
func Derive[T any](fn func(ctx *atoms.ResolveCtx) (T, error)) atoms.Producer[T] {
	return &deriveProducer[T]{fn: fn}
}

type deriveProducer[T any] struct {
	atoms.BaseProducer[T]
	fn func(ctx *atoms.ResolveCtx) (T, error)
}

func (p *deriveProducer[T]) Produce(ctx *atoms.ResolveCtx) (T, error) {
	return p.fn(ctx)
}
