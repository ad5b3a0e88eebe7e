package flavors_test

import (
	"context"
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

func TestTaskSeedsThenRefreshes(t *testing.T) {
	store := atoms.NewStore()

	calls := 0
	task := atoms.NewAtom(flavors.NewTask(func(_ context.Context, _ *atoms.ResolveCtx) (int, error) {
		calls++
		return calls * 10, nil
	}))

	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()

	seeded, err := atoms.WatchSub(store, task, sub, func() {})
	if err != nil {
		t.Fatalf("WatchSub: %v", err)
	}
	if seeded != 10 {
		t.Fatalf("expected seeded value 10, got %d", seeded)
	}

	refreshed, err := atoms.Refresh(store, context.Background(), task)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed != 20 {
		t.Fatalf("expected refreshed value 20, got %d", refreshed)
	}

	cached, ok := atoms.Lookup(store, task)
	if !ok || cached != 20 {
		t.Fatalf("expected cache updated to 20, got %d (ok=%v)", cached, ok)
	}
}
