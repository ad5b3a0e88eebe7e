package atoms_test

import (
	"reflect"
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

// S5 — Snapshot restore. Build x -> y -> z, subscribe to z, snapshot, mutate
// x (which ripples to y and z), restore the snapshot, and check z's value
// is restored and its subscription fires exactly once for the restore.
func TestSnapshotRestore(t *testing.T) {
	store := atoms.NewStore()

	x := atoms.NewAtom(flavors.Value(1))
	y := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
		v, err := atoms.Watch(ctx, x)
		return v * 2, err
	}))
	z := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
		v, err := atoms.Watch(ctx, y)
		return v + 1, err
	}))

	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()

	fired := 0
	v, err := atoms.WatchSub(store, z, sub, func() { fired++ })
	if err != nil {
		t.Fatalf("WatchSub(z): %v", err)
	}
	if v != 3 {
		t.Fatalf("expected z == 3, got %d", v)
	}

	snap := store.Snapshot()
	before, ok := atoms.SnapshotLookup(snap, z)
	if !ok || before != 3 {
		t.Fatalf("expected snapshot to retain z == 3, got %d (ok=%v)", before, ok)
	}

	if err := atoms.Set(store, x, 10); err != nil {
		t.Fatalf("Set(x, 10): %v", err)
	}
	mutated, ok := atoms.Lookup(store, z)
	if !ok || mutated != 21 {
		t.Fatalf("expected z == 21 after mutating x, got %d (ok=%v)", mutated, ok)
	}
	if fired != 1 {
		t.Fatalf("expected one update from the mutation, got %d", fired)
	}

	store.Restore(snap)

	restored, ok := atoms.Lookup(store, z)
	if !ok || restored != 3 {
		t.Fatalf("expected z restored to 3, got %d (ok=%v)", restored, ok)
	}
	if fired != 2 {
		t.Fatalf("expected exactly one additional fire from Restore, got %d total", fired)
	}
}

// §8 invariant 6 — Restore fidelity: the graph's dependency edges after
// Restore match exactly what the snapshot recorded, not a mix of old and new.
func TestSnapshotRestoreGraphFidelity(t *testing.T) {
	store := atoms.NewStore()

	toggle := atoms.NewAtom(flavors.Value(true))
	a := atoms.NewAtom(flavors.Value(100))
	b := atoms.NewAtom(flavors.Value(200))

	derived := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
		useA, err := atoms.Watch(ctx, toggle)
		if err != nil {
			return 0, err
		}
		if useA {
			v, err := atoms.Watch(ctx, a)
			return v, err
		}
		v, err := atoms.Watch(ctx, b)
		return v, err
	}))

	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()

	v, err := atoms.WatchSub(store, derived, sub, func() {})
	if err != nil {
		t.Fatalf("WatchSub(derived): %v", err)
	}
	if v != 100 {
		t.Fatalf("expected derived == 100, got %d", v)
	}

	snap := store.Snapshot()

	if err := atoms.Set(store, toggle, false); err != nil {
		t.Fatalf("Set(toggle, false): %v", err)
	}
	flipped, ok := atoms.Lookup(store, derived)
	if !ok || flipped != 200 {
		t.Fatalf("expected derived == 200 after flipping, got %d (ok=%v)", flipped, ok)
	}

	store.Restore(snap)

	restored, ok := atoms.Lookup(store, derived)
	if !ok || restored != 100 {
		t.Fatalf("expected derived restored to 100, got %d (ok=%v)", restored, ok)
	}
	if !reflect.DeepEqual(store.Snapshot().Edges(), snap.Edges()) {
		t.Fatal("expected the dependency edges after Restore to match the snapshot's exactly")
	}
}
