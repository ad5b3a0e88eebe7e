package flavors_test

import (
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

func TestPublisherPushesThroughSet(t *testing.T) {
	store := atoms.NewStore()

	var push func(int)
	pub := flavors.NewPublisher(0, func(p *flavors.Publisher[int]) func() {
		push = p.Notify
		return func() { push = nil }
	})

	atom := atoms.NewAtom[int](pub)
	pub.Bind(store, atom)

	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()

	fired := 0
	v, err := atoms.WatchSub(store, atom, sub, func() { fired++ })
	if err != nil {
		t.Fatalf("WatchSub: %v", err)
	}
	if v != 0 {
		t.Fatalf("expected initial 0, got %d", v)
	}
	if push == nil {
		t.Fatal("expected subscribe callback to have run and captured Notify")
	}

	push(42)

	cached, ok := atoms.Lookup(store, atom)
	if !ok || cached != 42 {
		t.Fatalf("expected pushed value 42, got %d (ok=%v)", cached, ok)
	}
	if fired != 1 {
		t.Fatalf("expected subscriber to fire exactly once, fired %d times", fired)
	}
}
