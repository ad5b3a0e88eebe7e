package flavors

import "github.com/reactivestate/atoms"

// Publisher is the push-source flavor: an external system calls Notify to
// push a new value whenever it has one, rather than the kernel pulling a
// value by re-invoking Produce. Produce wires up the subscription once per
// materialization of the atom's state (whenever no coordinator is set yet)
// and stores the unsubscribe closure as this atom's coordinator. Releasing
// the atom discards that coordinator without calling the closure.
//
// Typical use: atom := atoms.NewAtom(flavors.NewPublisher(initial, func(pub
// *flavors.Publisher[T]) func() { return externalFeed.Subscribe(pub.Notify)
// })) — the subscribe callback receives the Publisher itself so it can call
// Notify whenever the external feed produces a value; Notify internally
// issues atoms.Set on the StoreContext/atom pair captured by Bind.
type Publisher[T any] struct {
	atoms.BaseProducer[T]
	initial   T
	subscribe func(p *Publisher[T]) func()

	atom  *atoms.Atom[T]
	store *atoms.StoreContext
}

// NewPublisher creates a Publisher atom producer. subscribe is called once,
// the first time the atom is produced, and must return an unsubscribe
// closure.
func NewPublisher[T any](initial T, subscribe func(p *Publisher[T]) func()) *Publisher[T] {
	return &Publisher[T]{initial: initial, subscribe: subscribe}
}

// Bind associates this Publisher's producer with the atom it backs and the
// store it will be read through, so Notify can call atoms.Set. Call this
// once, right after atoms.NewAtom, before the atom is ever read.
func (p *Publisher[T]) Bind(store *atoms.StoreContext, atom *atoms.Atom[T]) {
	p.store = store
	p.atom = atom
}

func (p *Publisher[T]) Produce(rctx *atoms.ResolveCtx) (T, error) {
	if rctx.Coordinator() == nil {
		unsubscribe := p.subscribe(p)
		rctx.SetCoordinator(unsubscribe)
	}
	return p.initial, nil
}

// Notify pushes a new value into the bound atom via atoms.Set. It is a
// no-op if Bind was never called.
func (p *Publisher[T]) Notify(v T) {
	if p.store == nil || p.atom == nil {
		return
	}
	_ = atoms.Set(p.store, p.atom, v)
}
