package atoms_test

import (
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

// §8 invariant 3 — Release soundness. Unsubscribing from the sole subscriber
// of a leaf of a dependency chain releases every key in the chain that has
// no other subscribers and no children left.
func TestReleaseCascadesThroughChain(t *testing.T) {
	store := atoms.NewStore()

	a := atoms.NewAtom(flavors.Value(1))
	b := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
		v, err := atoms.Watch(ctx, a)
		return v + 1, err
	}))
	c := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
		v, err := atoms.Watch(ctx, b)
		return v + 1, err
	}))

	sub := atoms.NewSubscriber()
	if _, err := atoms.WatchSub(store, c, sub, func() {}); err != nil {
		t.Fatalf("WatchSub(c): %v", err)
	}

	for _, atom := range []*atoms.Atom[int]{a, b, c} {
		if _, ok := atoms.Lookup(store, atom); !ok {
			t.Fatal("expected every link in the chain to be cached while subscribed")
		}
	}

	sub.Unsubscribe()

	for i, atom := range []*atoms.Atom[int]{a, b, c} {
		if _, ok := atoms.Lookup(store, atom); ok {
			t.Fatalf("expected link %d released after the sole subscription was dropped", i)
		}
	}
}

// keepAlive retains a root-scoped cache even with no subscribers or children.
func TestKeepAlivePreventsRelease(t *testing.T) {
	store := atoms.NewStore()
	pinned := atoms.NewAtom(flavors.Value(7), atoms.WithKeepAlive[int](true))

	sub := atoms.NewSubscriber()
	if _, err := atoms.WatchSub(store, pinned, sub, func() {}); err != nil {
		t.Fatalf("WatchSub(pinned): %v", err)
	}
	sub.Unsubscribe()

	if _, ok := atoms.Lookup(store, pinned); !ok {
		t.Fatal("expected keepAlive atom to survive losing its only subscriber")
	}
}

// keepAlive is disabled once the effective key ends up scoped (§3 Lifecycle).
func TestKeepAliveDisabledWhenScoped(t *testing.T) {
	root := atoms.NewStore()
	pinned := atoms.NewAtom(flavors.Value(7), atoms.WithKeepAlive[int](true))

	scopeKey := atoms.NewScopeKey()
	scope := root.Scoped(scopeKey, "s", nil, []atoms.ScopeOverride{
		atoms.OverrideValueScoped(pinned, 8),
	})

	sub := atoms.NewSubscriber()
	v, err := atoms.WatchSub(scope, pinned, sub, func() {})
	if err != nil {
		t.Fatalf("WatchSub(pinned) in scope: %v", err)
	}
	if v != 8 {
		t.Fatalf("expected scoped override value 8, got %d", v)
	}
	sub.Unsubscribe()

	if _, ok := atoms.Lookup(scope, pinned); ok {
		t.Fatal("expected scoped keepAlive atom to release once its only subscriber drops")
	}
}
