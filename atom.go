package atoms

import (
	"context"
	"reflect"
)

// Atom is a user-defined descriptor of a state cell: a key for identity, an
// optional scopeID, a keepAlive marker, and a producer. Atoms are value
// descriptors — two atoms are equivalent iff their type and key match;
// distinct *Atom[T] values are distinct atoms even if produced identically,
// matching the teacher's Executor[T] identity-by-pointer default.
//
// There is deliberately no declarative dependency list on Atom: spec
// dependency inference is purely observational (see Watch), unlike the
// teacher's Derive1..Derive9 generated constructors which take an explicit
// Dependency list. An Atom here carries only its own producer.
type Atom[T any] struct {
	explicitKey any
	scopeIDVal  any
	keepAlive   bool
	producer    Producer[T]
}

// AtomOption configures an Atom at construction time, mirroring the
// teacher's ExecutorOption/ScopeOption functional-options idiom.
type AtomOption[T any] func(*Atom[T])

// WithKey overrides the atom's default identity (its own pointer) with an
// explicit, externally meaningful key.
func WithKey[T any](key any) AtomOption[T] {
	return func(a *Atom[T]) { a.explicitKey = key }
}

// WithScopeID declares the ScopeID this atom resolves against via
// inheritedScopeKeys, per §4.5 effective-key resolution step 3.
func WithScopeID[T any](scopeID any) AtomOption[T] {
	return func(a *Atom[T]) { a.scopeIDVal = scopeID }
}

// WithKeepAlive pins the atom's cache in memory even without subscribers or
// children, unless the key ends up scoped or scoped-overridden (§3 Lifecycle).
func WithKeepAlive[T any](keepAlive bool) AtomOption[T] {
	return func(a *Atom[T]) { a.keepAlive = keepAlive }
}

// NewAtom constructs an atom wrapping producer, the single hook-bundle every
// flavor in atoms/flavors supplies.
func NewAtom[T any](producer Producer[T], opts ...AtomOption[T]) *Atom[T] {
	a := &Atom[T]{producer: producer}
	for _, opt := range opts {
		opt(a)
	}
	if a.explicitKey == nil {
		a.explicitKey = a
	}
	return a
}

var atomValueType = reflect.TypeOf((*any)(nil)).Elem()

func typeTagOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AnyAtom is the type-erased view of an Atom[T], the form the kernel's maps
// actually store, mirroring the teacher's AnyExecutor interface.
type AnyAtom interface {
	keyValue() any
	scopeIDValue() any
	isKeepAlive() bool
	typeTag() reflect.Type

	produceAny(ctx *ResolveCtx) (any, error)
	manageOverriddenAny(v any, ctx *ResolveCtx) (any, error)
	refreshAny(ctx context.Context, rctx *ResolveCtx) (any, error)
	shouldUpdateAny(newVal, oldVal any) bool
	performUpdateAny(body func())
	updatedAny(newVal, oldVal any, ctx *ResolveCtx)

	// invokeCustomReset runs the atom's CustomResetter hook if it implements
	// one, reporting whether it did. It never touches this atom's own cache
	// or state (§8 property 8).
	invokeCustomReset(sc *StoreContext) bool
}

func (a *Atom[T]) keyValue() any           { return a.explicitKey }
func (a *Atom[T]) scopeIDValue() any       { return a.scopeIDVal }
func (a *Atom[T]) isKeepAlive() bool       { return a.keepAlive }
func (a *Atom[T]) typeTag() reflect.Type   { return typeTagOf[T]() }

func (a *Atom[T]) produceAny(ctx *ResolveCtx) (any, error) {
	return a.producer.Produce(ctx)
}

func (a *Atom[T]) manageOverriddenAny(v any, ctx *ResolveCtx) (any, error) {
	typed, ok := v.(T)
	if !ok {
		return nil, &overrideTypeError{Key: ctx.key}
	}
	return a.producer.ManageOverridden(typed, ctx)
}

func (a *Atom[T]) refreshAny(ctx context.Context, rctx *ResolveCtx) (any, error) {
	return a.producer.Refresh(ctx, rctx)
}

func (a *Atom[T]) shouldUpdateAny(newVal, oldVal any) bool {
	newTyped, _ := newVal.(T)
	oldTyped, _ := oldVal.(T)
	return a.producer.ShouldUpdate(newTyped, oldTyped)
}

func (a *Atom[T]) performUpdateAny(body func()) {
	a.producer.PerformUpdate(body)
}

func (a *Atom[T]) updatedAny(newVal, oldVal any, ctx *ResolveCtx) {
	newTyped, _ := newVal.(T)
	oldTyped, _ := oldVal.(T)
	a.producer.Updated(newTyped, oldTyped, ctx)
}

func (a *Atom[T]) invokeCustomReset(sc *StoreContext) bool {
	resetter, ok := a.producer.(CustomResetter)
	if !ok {
		return false
	}
	resetter.ResetHook(sc)
	return true
}
