package atoms

// cacheEntry is §3's Cache: the atom instance that produced the current
// value, plus the value itself. Exactly one exists per atomKey once
// materialized.
type cacheEntry struct {
	atom  AnyAtom
	value any
}

// stateTable bundles per-key caches, per-key coordinator/transaction state,
// and per-key subscriptions into one cohesive component, matching spec.md's
// naming of StateTable as a single conceptual unit. Grounded on the
// teacher's Scope.cache sync.Map plus cleanupRegistry, restructured because
// the kernel here runs single-threaded cooperative (spec.md §5) — no
// sync.Map/sync.RWMutex, unlike the teacher's inherently multi-threaded
// Scope.
type stateTable struct {
	caches map[atomKey]cacheEntry
	states map[atomKey]*atomState
	subs   map[atomKey]map[SubscriberKey]Subscription
}

// atomState is §3's AtomState: the opaque per-key coordinator plus the
// current in-flight transaction, if any.
type atomState struct {
	coordinator any
	txn         *transaction
}

func newStateTable() *stateTable {
	return &stateTable{
		caches: make(map[atomKey]cacheEntry),
		states: make(map[atomKey]*atomState),
		subs:   make(map[atomKey]map[SubscriberKey]Subscription),
	}
}

func (t *stateTable) hasCache(key atomKey) bool {
	_, ok := t.caches[key]
	return ok
}

func (t *stateTable) getCache(key atomKey) (cacheEntry, bool) {
	e, ok := t.caches[key]
	return e, ok
}

func (t *stateTable) setCache(key atomKey, e cacheEntry) {
	t.caches[key] = e
}

func (t *stateTable) deleteCache(key atomKey) {
	delete(t.caches, key)
}

func (t *stateTable) stateFor(key atomKey) *atomState {
	s, ok := t.states[key]
	if !ok {
		s = &atomState{}
		t.states[key] = s
	}
	return s
}

func (t *stateTable) deleteState(key atomKey) {
	delete(t.states, key)
}

func (t *stateTable) coordinator(key atomKey) any {
	return t.stateFor(key).coordinator
}

func (t *stateTable) setCoordinator(key atomKey, v any) {
	t.stateFor(key).coordinator = v
}

func (t *stateTable) currentTxn(key atomKey) *transaction {
	s, ok := t.states[key]
	if !ok {
		return nil
	}
	return s.txn
}

func (t *stateTable) setTxn(key atomKey, txn *transaction) {
	t.stateFor(key).txn = txn
}

func (t *stateTable) subscriptionsFor(key atomKey) map[SubscriberKey]Subscription {
	return t.subs[key]
}

func (t *stateTable) hasSubscriptions(key atomKey) bool {
	return len(t.subs[key]) > 0
}

func (t *stateTable) addSubscription(key atomKey, subKey SubscriberKey, sub Subscription) {
	if t.subs[key] == nil {
		t.subs[key] = make(map[SubscriberKey]Subscription)
	}
	t.subs[key][subKey] = sub
}

func (t *stateTable) removeSubscription(key atomKey, subKey SubscriberKey) {
	if m, ok := t.subs[key]; ok {
		delete(m, subKey)
		if len(m) == 0 {
			delete(t.subs, key)
		}
	}
}

func (t *stateTable) deleteSubscriptions(key atomKey) {
	delete(t.subs, key)
}

// snapshotSubscriptions copies the subscription map for key so callers can
// iterate it while tolerating concurrent mutation (§5 Reentrancy point c).
func (t *stateTable) snapshotSubscriptions(key atomKey) map[SubscriberKey]Subscription {
	src := t.subs[key]
	out := make(map[SubscriberKey]Subscription, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
