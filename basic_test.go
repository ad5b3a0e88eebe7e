package atoms_test

import (
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

// S1 — Basic watch/set/unwatch.
func TestBasicWatchSetUnwatch(t *testing.T) {
	store := atoms.NewStore()
	counter := atoms.NewAtom(flavors.Value(0))

	sub := atoms.NewSubscriber()
	fired := 0

	v, err := atoms.WatchSub(store, counter, sub, func() { fired++ })
	if err != nil {
		t.Fatalf("WatchSub: %v", err)
	}
	if v != 0 {
		t.Fatalf("expected 0, got %d", v)
	}
	if !atoms.HasSubscribers(store.Snapshot(), counter) {
		t.Fatal("expected a subscription to exist after WatchSub")
	}

	if err := atoms.Set(store, counter, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected subscription to fire exactly once, fired %d times", fired)
	}

	cached, ok := atoms.Lookup(store, counter)
	if !ok || cached != 1 {
		t.Fatalf("expected cached value 1, got %d (ok=%v)", cached, ok)
	}

	sub.Unsubscribe()

	if _, ok := atoms.Lookup(store, counter); ok {
		t.Fatal("expected cache to be released after unsubscribe")
	}
}

// §8 property 4 — Watch idempotence.
func TestWatchIdempotence(t *testing.T) {
	store := atoms.NewStore()
	counter := atoms.NewAtom(flavors.Value(42))
	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()

	for i := 0; i < 3; i++ {
		v, err := atoms.WatchSub(store, counter, sub, func() {})
		if err != nil {
			t.Fatalf("WatchSub iteration %d: %v", i, err)
		}
		if v != 42 {
			t.Fatalf("iteration %d: expected 42, got %d", i, v)
		}
	}
}

// §8 property 5 — Read non-retention.
func TestReadNonRetention(t *testing.T) {
	store := atoms.NewStore()
	ephemeral := atoms.NewAtom(flavors.Value("hi"))

	v, err := atoms.Read(store, ephemeral)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != "hi" {
		t.Fatalf("expected hi, got %q", v)
	}

	if _, ok := atoms.Lookup(store, ephemeral); ok {
		t.Fatal("expected Read to leave no cache behind")
	}
}

// §8 property 5 exception — keepAlive && !scoped retains the cache.
func TestReadRetainsKeepAlive(t *testing.T) {
	store := atoms.NewStore()
	pinned := atoms.NewAtom(flavors.Value("pin"), atoms.WithKeepAlive[string](true))

	if _, err := atoms.Read(store, pinned); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if _, ok := atoms.Lookup(store, pinned); !ok {
		t.Fatal("expected keepAlive atom's cache to survive Read")
	}
}
