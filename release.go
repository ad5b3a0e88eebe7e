package atoms

// checkAndRelease is §4.7's release algorithm. No teacher equivalent exists
// — the teacher never frees a cache once created, since its domain has no
// subscriber/keepAlive concept — so this is built fresh using the teacher's
// own map-mutation idiom (delete(map, key), symmetric edge removal) applied
// to the new eligibility rules spec.md requires.
func (sc *StoreContext) checkAndRelease(key atomKey) {
	entry, hasCache := sc.core.states.getCache(key)
	if !hasCache {
		return
	}

	if !sc.releasable(key, entry.atom) {
		return
	}

	formerUpstreams := sc.core.graph.removeAllEdgesFor(key)

	if txn := sc.core.states.currentTxn(key); txn != nil {
		txn.terminate()
	}

	sc.core.states.deleteCache(key)
	sc.core.states.deleteState(key)
	sc.core.states.deleteSubscriptions(key)

	for _, ext := range sc.core.extensions {
		ext.OnRelease(keyString(key))
	}

	sc.notifyObservers()

	for upstream := range formerUpstreams {
		sc.checkAndRelease(upstream)
	}
}

// releasable implements §3 Lifecycle / §4.7's eligibility test: not
// keepAlive (or scoped/scoped-overridden, which disables keepAlive), no
// children, no subscriptions.
func (sc *StoreContext) releasable(key atomKey, atom AnyAtom) bool {
	if sc.core.graph.hasChildren(key) {
		return false
	}
	if sc.core.states.hasSubscriptions(key) {
		return false
	}

	if !atom.isKeepAlive() {
		return true
	}

	// keepAlive is disabled when the key ended up scoped, or when a scoped
	// override applies to it.
	if key.isScoped() {
		return true
	}
	if ov, ok := sc.lookupOverride(atom); ok && ov.isScoped {
		return true
	}
	return false
}

func keyString(key atomKey) string {
	return key.typeTag.String() + "|" + sprintKeyValue(key.value) + "|" + string(key.scopeKey)
}

func sprintKeyValue(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "atom"
}
