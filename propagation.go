package atoms

import "fmt"

// update is §4.6's update-propagation algorithm: write the new cache value,
// check shouldUpdate, then inside performUpdate fire subscribers, reset
// children, notify observers, and call the Updated hook — strictly in that
// order. Grounded on the teacher's Update (findReactiveDependents + cache
// delete + re-resolve-on-next-access), generalized to be eager (children are
// reset immediately, not lazily invalidated) and ordered per spec.md, since
// the teacher has no subscriber concept and invalidates lazily.
func (sc *StoreContext) update(key atomKey, atom AnyAtom, newValue any) error {
	entry, ok := sc.core.states.getCache(key)
	oldValue := entry.value
	hadCache := ok

	sc.core.states.setCache(key, cacheEntry{atom: atom, value: newValue})

	if hadCache && !atom.shouldUpdateAny(newValue, oldValue) {
		return nil
	}

	var propagationErr error
	atom.performUpdateAny(func() {
		propagationErr = sc.propagate(key, atom, newValue, oldValue)
	})
	return propagationErr
}

func (sc *StoreContext) propagate(key atomKey, atom AnyAtom, newValue, oldValue any) error {
	// a. Subscribers first.
	for _, sub := range sc.core.states.snapshotSubscriptions(key) {
		sub.update()
	}

	// b. Then children: reset each, re-entering its producer and
	// re-recording its own dependency edges.
	for child := range sc.core.graph.childrenOf(key) {
		childEntry, ok := sc.core.states.getCache(child)
		if !ok {
			continue
		}
		if err := sc.resetKey(child, childEntry.atom); err != nil {
			return err
		}
	}

	// c. Fire observers once with a fresh snapshot.
	sc.notifyObservers()

	// d. User-defined side effect, last. The ResolveCtx built here carries
	// no transaction, so Coordinator/SetCoordinator still work (they only
	// need the key) but Watch would panic if called here, which is correct:
	// Updated is documented as a side effect hook, not a place to record
	// new dependencies.
	rctx := &ResolveCtx{store: sc, key: key}
	atom.updatedAny(newValue, oldValue, rctx)

	return nil
}

// resetKey re-evaluates the atom currently cached under key as if freshly
// created, routing the result through update — the type-erased core of both
// Reset[T] and child re-evaluation during propagation.
func (sc *StoreContext) resetKey(key atomKey, atom AnyAtom) error {
	ov, _ := sc.lookupOverrideForKey(key, atom)
	value, err := sc.evaluate(atom, key, ov)
	if err != nil {
		return fmt.Errorf("atoms: resetting %v: %w", key.value, err)
	}
	return sc.update(key, atom, value)
}

func (sc *StoreContext) lookupOverrideForKey(_ atomKey, atom AnyAtom) (*Override, bool) {
	return sc.lookupOverride(atom)
}
