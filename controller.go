package atoms

import "context"

// Controller bundles an atom with the StoreContext it's bound to, offering
// the same Get/Peek/Update/Release/Reload/IsCached sugar as the teacher's
// controller.go — a close port, since the teacher's Controller[T] already
// matches this kernel's Read/Lookup/Set/Unwatch/Reset operations almost
// one-for-one.
type Controller[T any] struct {
	atom  *Atom[T]
	store *StoreContext
}

// NewController binds atom to store.
func NewController[T any](store *StoreContext, atom *Atom[T]) *Controller[T] {
	return &Controller[T]{atom: atom, store: store}
}

// Get resolves the atom's current value, creating it if necessary.
func (c *Controller[T]) Get() (T, error) {
	return Read(c.store, c.atom)
}

// Peek returns the cached value without creating it.
func (c *Controller[T]) Peek() (T, bool) {
	return Lookup(c.store, c.atom)
}

// Update replaces the atom's value via the update path, equivalent to Set.
func (c *Controller[T]) Update(v T) error {
	return Set(c.store, c.atom, v)
}

// Modify performs a read-modify-write.
func (c *Controller[T]) Modify(fn func(T) T) error {
	return Modify(c.store, c.atom, fn)
}

// Reload re-evaluates the atom as if freshly created.
func (c *Controller[T]) Reload() error {
	return Reset(c.store, c.atom)
}

// Refresh runs the atom's asynchronous Refresh hook.
func (c *Controller[T]) Refresh(ctx context.Context) (T, error) {
	return Refresh(c.store, ctx, c.atom)
}

// Release removes sub's subscription to the controller's atom (if any) via
// Unwatch; the controller itself holds no subscriber state.
func (c *Controller[T]) Release(sub *Subscriber) {
	Unwatch(c.store, c.atom, sub)
}

// IsCached reports whether the atom currently has a materialized cache.
func (c *Controller[T]) IsCached() bool {
	_, ok := Lookup(c.store, c.atom)
	return ok
}
