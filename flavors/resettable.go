package flavors

import "github.com/reactivestate/atoms"

// Resettable is the custom-resettable flavor from spec.md §4.4/§8 property
// 8: it behaves like Value, but also implements atoms.CustomResetter so
// atoms.ResetCustom invokes onReset instead of touching this atom's own
// cache or state. onReset typically calls atoms.Set/atoms.Reset on other
// atoms from sc.
type Resettable[T any] struct {
	atoms.BaseProducer[T]
	initial T
	onReset func(sc *atoms.StoreContext)
}

// NewResettable creates a Resettable atom producer seeded with initial,
// whose custom reset hook is onReset.
func NewResettable[T any](initial T, onReset func(sc *atoms.StoreContext)) *Resettable[T] {
	return &Resettable[T]{initial: initial, onReset: onReset}
}

func (p *Resettable[T]) Produce(_ *atoms.ResolveCtx) (T, error) {
	return p.initial, nil
}

// ResetHook implements atoms.CustomResetter.
func (p *Resettable[T]) ResetHook(sc *atoms.StoreContext) {
	p.onReset(sc)
}
