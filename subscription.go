package atoms

import "sync"

// Subscription is the back-channel callback invoked when the atom it's
// registered under updates (§3).
type Subscription struct {
	update func()
}

// Subscriber owns the set of atom keys it is subscribed to and an
// unsubscribe path invoked on disposal, grounded on the teacher's
// context.go cleanupEntry/ResolveCtx.OnCleanup ledger-of-closures idiom,
// generalized from "run cleanups on disposal" to "unwatch every key this
// subscriber touched".
type Subscriber struct {
	key SubscriberKey

	mu      sync.Mutex
	stores  map[*StoreContext]map[atomKey]struct{}
	retired bool
}

// NewSubscriber mints a fresh Subscriber with its own unique key.
func NewSubscriber() *Subscriber {
	return &Subscriber{
		key:    newSubscriberKey(),
		stores: make(map[*StoreContext]map[atomKey]struct{}),
	}
}

func (s *Subscriber) track(sc *StoreContext, key atomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stores[sc] == nil {
		s.stores[sc] = make(map[atomKey]struct{})
	}
	s.stores[sc][key] = struct{}{}
}

func (s *Subscriber) untrack(sc *StoreContext, key atomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.stores[sc]; ok {
		delete(m, key)
		if len(m) == 0 {
			delete(s.stores, sc)
		}
	}
}

// Unsubscribe removes this subscriber's registration from every atom key it
// ever watched, across every StoreContext it watched through, and runs
// checkAndRelease on each.
func (s *Subscriber) Unsubscribe() {
	s.mu.Lock()
	if s.retired {
		s.mu.Unlock()
		return
	}
	s.retired = true
	snapshot := s.stores
	s.stores = nil
	s.mu.Unlock()

	for sc, keys := range snapshot {
		for key := range keys {
			sc.unwatchKey(key, s)
		}
	}
}
