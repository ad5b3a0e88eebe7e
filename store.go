package atoms

import (
	"context"
	"fmt"
	"sort"
)

// storeCore is the shared arena every StoreContext derived from the same
// root points at: the graph, the state table, the root override table, tags,
// extensions, and transaction history. Scopes share one storeCore and differ
// only in their own local override table, inherited scope keys, and observer
// list — the "arena+index" guidance from Design Notes applied to scopes
// themselves, not just to atom keys.
type storeCore struct {
	graph     *graph
	states    *stateTable
	tags      *tagStore
	overrides *overrideTable

	extensions []Extension
	history    *transactionHistory
}

// StoreContext is the kernel surface: read/watch/set/modify/refresh/reset/
// lookup/unwatch/snapshot/restore, plus scope derivation. Grounded on the
// teacher's Scope (Resolve/Update/findReactiveDependents/UseExtension/
// Dispose) and Controller (Get/Peek/Update/Release/Reload/IsCached), with
// scope inheritance built fresh — the teacher's Scope is single-level and
// has no equivalent.
type StoreContext struct {
	core *storeCore

	scopeKey           ScopeKey
	scopeID            any
	inheritedScopeKeys map[any]ScopeKey

	overrides *overrideTable
	observers []Observer
}

// StoreOption configures a root StoreContext at construction, mirroring the
// teacher's ScopeOption functional-options idiom.
type StoreOption func(*StoreContext)

// WithExtension registers a cross-cutting Extension on the root store,
// applied to every operation on every scope derived from it.
func WithExtension(ext Extension) StoreOption {
	return func(sc *StoreContext) {
		sc.core.extensions = append(sc.core.extensions, ext)
		sort.SliceStable(sc.core.extensions, func(i, j int) bool {
			return sc.core.extensions[i].Order() < sc.core.extensions[j].Order()
		})
	}
}

// WithObserver registers an Observer on the root store.
func WithObserver(o Observer) StoreOption {
	return func(sc *StoreContext) { sc.observers = append(sc.observers, o) }
}

// WithRootOverride installs an override into the shared arena, visible from
// the root store and every scope derived from it, unless shadowed by a more
// specific override closer to the querying context (lookupOverride checks
// the local table before falling back here).
func WithRootOverride(so ScopeOverride) StoreOption {
	return func(sc *StoreContext) { sc.core.overrides.install(so) }
}

// NewStore creates a root StoreContext with its own fresh arena.
func NewStore(opts ...StoreOption) *StoreContext {
	sc := &StoreContext{
		core: &storeCore{
			graph:     newGraph(),
			states:    newStateTable(),
			tags:      newTagStore(),
			overrides: newOverrideTable(),
		},
		inheritedScopeKeys: make(map[any]ScopeKey),
		overrides:          newOverrideTable(),
	}
	sc.core.history = newTransactionHistory(1000)
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Scoped derives a child StoreContext identified by scopeKey/scopeID,
// sharing the parent's arena, inheriting the parent's observers (§4.8: root
// and scope-inherited observers both receive every snapshot), and layering
// its own additional observers and overrides on top
// (§6 scoped(scopeKey, scopeID, observers, overrides)).
func (sc *StoreContext) Scoped(scopeKey ScopeKey, scopeID any, observers []Observer, overrides []ScopeOverride) *StoreContext {
	child := &StoreContext{
		core:               sc.core,
		scopeKey:           scopeKey,
		scopeID:            scopeID,
		inheritedScopeKeys: make(map[any]ScopeKey, len(sc.inheritedScopeKeys)+1),
		overrides:          newOverrideTable(),
		observers:          append(append([]Observer(nil), sc.observers...), observers...),
	}
	for id, key := range sc.inheritedScopeKeys {
		child.inheritedScopeKeys[id] = key
	}
	if scopeID != nil {
		child.inheritedScopeKeys[scopeID] = scopeKey
	}
	for _, so := range overrides {
		child.overrides.install(so)
	}
	return child
}

// Inherited derives a child StoreContext with the same scope identity as sc
// but its own additional observers/overrides layered on top (§6
// inherited(observers, overrides)).
func (sc *StoreContext) Inherited(observers []Observer, overrides []ScopeOverride) *StoreContext {
	child := &StoreContext{
		core:               sc.core,
		scopeKey:           sc.scopeKey,
		scopeID:            sc.scopeID,
		inheritedScopeKeys: sc.inheritedScopeKeys,
		overrides:          newOverrideTable(),
		observers:          append(append([]Observer(nil), sc.observers...), observers...),
	}
	for k, v := range sc.overrides.byKey {
		child.overrides.byKey[k] = v
	}
	for k, v := range sc.overrides.byType {
		child.overrides.byType[k] = v
	}
	for _, so := range overrides {
		child.overrides.install(so)
	}
	return child
}

// effectiveKey implements §4.5's effective-key resolution.
func effectiveKey[T any](sc *StoreContext, atom *Atom[T]) (atomKey, *Override) {
	ov, _ := sc.lookupOverride(atom)

	typeTag := atom.typeTag()
	base := atom.keyValue()

	if ov != nil && ov.isScoped {
		return newAtomKey(typeTag, base, sc.scopeKey), ov
	}
	if scopeID := atom.scopeIDValue(); scopeID != nil {
		if key, ok := sc.inheritedScopeKeys[scopeID]; ok {
			return newAtomKey(typeTag, base, key), ov
		}
	}
	return newAtomKey(typeTag, base, noScope), ov
}

// lookupOverride checks this context's local table first, falling back to
// the root table — concrete key before type key within each, per §8
// property 7.
func (sc *StoreContext) lookupOverride(atom AnyAtom) (*Override, bool) {
	if ov, ok := sc.overrides.lookup(atom); ok {
		return &ov, true
	}
	if ov, ok := sc.core.overrides.lookup(atom); ok {
		return &ov, true
	}
	return nil, false
}

// ensureCache resolves atom's effective key, materializing its cache via a
// fresh transaction if absent, and returns the key. This backs Read, Watch,
// and WatchSub equally.
func ensureCache[T any](sc *StoreContext, atom *Atom[T]) (atomKey, error) {
	key, ov := effectiveKey(sc, atom)

	if _, ok := sc.core.states.getCache(key); ok {
		return key, nil
	}

	value, err := sc.evaluate(atom, key, ov)
	if err != nil {
		return key, err
	}

	sc.core.states.setCache(key, cacheEntry{atom: atom, value: value})
	sc.notifyObservers()
	return key, nil
}

// evaluate runs atom's producer inside a fresh transaction for key, or its
// ManageOverridden hook if an override applies, wrapped by every registered
// Extension (teacher's middleware-chain idiom from Resolve/Update).
func (sc *StoreContext) evaluate(atom AnyAtom, key atomKey, ov *Override) (result any, err error) {
	op := Operation{Kind: OpWatch, Key: fmt.Sprintf("%v", key.value), Store: sc}

	run := func() (any, error) {
		txn := beginTransaction(sc, key)
		defer commitTransaction(sc, txn)

		rctx := acquireResolveCtx(sc, key, txn)
		defer releaseResolveCtx(rctx)

		if ov != nil {
			overridden, produceErr := ov.produce(atom)
			if produceErr != nil {
				return nil, produceErr
			}
			return atom.manageOverriddenAny(overridden, rctx)
		}
		return atom.produceAny(rctx)
	}

	wrapped := sc.wrapChain(op, run)
	result, err = wrapped()

	status := StatusCommitted
	if err != nil {
		status = StatusFailed
		sc.reportError(op, err)
	}
	sc.core.history.record(HistoryEntry{Key: op.Key, Status: status, Err: err})

	return result, err
}

func (sc *StoreContext) wrapChain(op Operation, final func() (any, error)) func() (any, error) {
	next := final
	for i := len(sc.core.extensions) - 1; i >= 0; i-- {
		ext := sc.core.extensions[i]
		prevNext := next
		next = func() (any, error) { return ext.Wrap(op, prevNext) }
	}
	return next
}

func (sc *StoreContext) reportError(op Operation, err error) {
	for _, ext := range sc.core.extensions {
		ext.OnError(op, err)
	}
}

// readCacheValue performs §4.9's type-recovery guard: a failed downcast is
// treated as a user key collision, logged, and the key is dropped so the
// next access recreates it.
func readCacheValue[T any](sc *StoreContext, key atomKey) (T, error) {
	var zero T

	entry, ok := sc.core.states.getCache(key)
	if !ok {
		return zero, fmt.Errorf("atoms: no cache for key %v", key.value)
	}
	typedAtom, ok := entry.atom.(*Atom[T])
	if !ok {
		sc.reportError(Operation{Kind: OpRead, Key: fmt.Sprintf("%v", key.value), Store: sc},
			&keyCollisionError{Key: key, Expected: fmt.Sprintf("%T", (*T)(nil)), Got: fmt.Sprintf("%T", entry.atom)})
		sc.dropKey(key)
		return zero, nil
	}
	_ = typedAtom
	value, ok := entry.value.(T)
	if !ok {
		sc.reportError(Operation{Kind: OpRead, Key: fmt.Sprintf("%v", key.value), Store: sc},
			&keyCollisionError{Key: key, Expected: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", entry.value)})
		sc.dropKey(key)
		return zero, nil
	}
	return value, nil
}

// dropKey is the §4.9/§7 "safe fallback": remove the offending cache/state
// and adjacent edges as if released, without running the normal
// checkAndRelease eligibility checks (a collision is an error condition, not
// a lifecycle decision).
func (sc *StoreContext) dropKey(key atomKey) {
	sc.core.states.deleteCache(key)
	sc.core.states.deleteState(key)
	sc.core.graph.removeAllEdgesFor(key)
}

// Read resolves atom's effective key, returning its cached value (creating
// it in a fresh transaction if absent). Because read creates no
// subscription and no graph edge, it immediately checkAndReleases the key
// afterward (§4.4) — by design this may fire observers twice in a row (the
// §9 Open Question, preserved unchanged here).
func Read[T any](sc *StoreContext, atom *Atom[T]) (T, error) {
	var zero T
	key, err := ensureCache(sc, atom)
	if err != nil {
		return zero, err
	}
	value, err := readCacheValue[T](sc, key)
	if err != nil {
		return zero, err
	}
	sc.checkAndRelease(key)
	return value, nil
}

// WatchSub is watch(atom, subscriber, subscription) from §4.4/§6: it ensures
// a cache exists, records the subscription under the key, and wires sub to
// untrack this key on disposal. First-time insertion fires observers;
// re-subscribing the same sub is idempotent (§8 property 4).
func WatchSub[T any](sc *StoreContext, atom *Atom[T], sub *Subscriber, onUpdate func()) (T, error) {
	var zero T
	key, err := ensureCache(sc, atom)
	if err != nil {
		return zero, err
	}

	existing := sc.core.states.subscriptionsFor(key)
	_, already := existing[sub.key]

	sc.core.states.addSubscription(key, sub.key, Subscription{update: onUpdate})
	sub.track(sc, key)

	if !already {
		sc.notifyObservers()
	}

	return readCacheValue[T](sc, key)
}

// Unwatch removes sub's subscription from atom and re-runs checkAndRelease.
func Unwatch[T any](sc *StoreContext, atom *Atom[T], sub *Subscriber) {
	key, _ := effectiveKey(sc, atom)
	sc.unwatchKey(key, sub)
}

func (sc *StoreContext) unwatchKey(key atomKey, sub *Subscriber) {
	sc.core.states.removeSubscription(key, sub.key)
	sub.untrack(sc, key)
	sc.notifyObservers()
	sc.checkAndRelease(key)
}

// Set replaces a state atom's cached value via the update path (§4.4/§4.6).
// If no cache exists yet, Set is a no-op, matching "if a cache exists,
// replaces its value". Terminating any in-flight transaction for the key
// first (S4) is what makes a concurrent refresh's late result discardable:
// once terminated, runRefresh's terminated() check suppresses the write.
func Set[T any](sc *StoreContext, atom *Atom[T], v T) error {
	key, _ := effectiveKey(sc, atom)
	entry, ok := sc.core.states.getCache(key)
	if !ok {
		return nil
	}
	sc.terminateInFlight(key)
	return sc.update(key, entry.atom, v)
}

// terminateInFlight terminates key's current transaction, if any, without
// starting a new one — used by writes (Set/Modify) that race an in-flight
// Refresh for the same key (§4.2's termination-on-new-write rule).
func (sc *StoreContext) terminateInFlight(key atomKey) {
	if txn := sc.core.states.currentTxn(key); txn != nil {
		txn.terminate()
	}
}

// Modify performs a read-modify-write on the cached value via the same
// update path as Set.
func Modify[T any](sc *StoreContext, atom *Atom[T], fn func(T) T) error {
	key, _ := effectiveKey(sc, atom)
	entry, ok := sc.core.states.getCache(key)
	if !ok {
		return nil
	}
	current, err := readCacheValue[T](sc, key)
	if err != nil {
		return err
	}
	sc.terminateInFlight(key)
	return sc.update(key, entry.atom, fn(current))
}

// Refresh runs atom's async Refresh hook, respecting cooperative
// cancellation and transaction termination (§4.4, §5). On success, the
// cache is updated through the normal propagation path unless the result
// was cancelled or terminated meanwhile.
func Refresh[T any](sc *StoreContext, ctx context.Context, atom *Atom[T]) (T, error) {
	var zero T
	key, err := ensureCache(sc, atom)
	if err != nil {
		return zero, err
	}

	txn := beginTransaction(sc, key)
	defer commitTransaction(sc, txn)
	rctx := &ResolveCtx{store: sc, key: key, txn: txn}

	result, err := runRefresh(ctx, sc, atom, rctx, txn)
	if err != nil {
		return zero, err
	}
	if txn.terminated() {
		return readCacheValue[T](sc, key)
	}

	if updErr := sc.update(key, atom, result); updErr != nil {
		return zero, updErr
	}
	return result, nil
}

// Reset rebuilds atom's cache as if first-created and routes the result
// through the update path (§4.4's generic reset overload).
func Reset[T any](sc *StoreContext, atom *Atom[T]) error {
	key, ov := effectiveKey(sc, atom)
	value, err := sc.evaluate(atom, key, ov)
	if err != nil {
		return err
	}
	return sc.update(key, atom, value.(T))
}

// ResetCustom invokes a custom-resettable atom's user reset hook. Per §8
// property 8, this never creates or destroys the atom's own cache or state
// — the hook typically calls Set/Reset on other atoms itself.
func ResetCustom[T any](sc *StoreContext, atom *Atom[T]) bool {
	return atom.invokeCustomReset(sc)
}

// Lookup returns the current cached value for atom, if any, without
// creating it.
func Lookup[T any](sc *StoreContext, atom *Atom[T]) (T, bool) {
	var zero T
	key, _ := effectiveKey(sc, atom)
	if !sc.core.states.hasCache(key) {
		return zero, false
	}
	v, err := readCacheValue[T](sc, key)
	if err != nil {
		return zero, false
	}
	return v, true
}
