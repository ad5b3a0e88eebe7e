// Package atoms provides a reactive state container built around atoms: small,
// independently addressable units of state that compose into a dynamic
// dependency graph.
//
// # Overview
//
// Atoms organizes code around four concepts:
//
//  1. Atoms: descriptors of a state cell with identity and a producer
//  2. StoreContext: the kernel that resolves, caches, and propagates updates
//  3. Scopes: sub-regions of a store with their own overrides and observers
//  4. Subscribers: external consumers that watch atoms and get notified
//
// # Basic Usage
//
//	store := atoms.NewStore()
//
//	counter := atoms.NewAtom(flavors.Value(0))
//
//	val, err := atoms.Read(store, counter)
//
// # Dependencies are observed, not declared
//
// Unlike dependency-injection containers with explicit dependency lists, an
// atom's producer calls atoms.Watch inside its own Produce hook to read other
// atoms; the kernel infers the edge from that call:
//
//	doubled := atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
//	    v, err := atoms.Watch(ctx, counter)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return v * 2, nil
//	}))
//
// Setting counter automatically re-evaluates doubled and notifies its
// subscribers:
//
//	atoms.Set(store, counter, 5)
//
// # Scopes
//
// A StoreContext can be scoped: child contexts inherit the root's atoms but
// can override specific atoms (or all atoms of a type) for testing or
// dependency injection. A scoped override re-keys the atom into the scope,
// so it does not touch the root's cache; a plain OverrideValue keeps the
// root key and shares that cache with the root:
//
//	testCtx := store.Scoped(atoms.NewScopeKey(), "test-scope",
//	    nil,
//	    []atoms.ScopeOverride{atoms.OverrideValueScoped(counter, 42)},
//	)
//
// # Subscribers
//
// View-layer consumers watch atoms through a Subscriber and get a callback
// fired on every update, until they unsubscribe:
//
//	sub := atoms.NewSubscriber()
//	val, err := atoms.WatchSub(store, counter, sub, func() {
//	    fmt.Println("counter changed")
//	})
//	defer sub.Unsubscribe()
//
// # Extensions
//
// Cross-cutting concerns (logging, tracing, metrics, debug graph dumps) wrap
// every atom evaluation through the Extension interface — see the
// atoms/extensions sub-package. Operations that evaluate nothing (Set,
// Lookup, Snapshot, ...) are not wrapped.
//
// # Flavors
//
// atoms/flavors supplies ready-made Producer implementations (Value, State,
// Task, Resettable, Publisher) built entirely on the public kernel surface.
//
// # Thread Safety
//
// The kernel itself runs cooperatively on a single logical thread — no
// kernel map is guarded by a lock. Refresh launches the producer's async
// work on a background goroutine, but every kernel mutation after it
// happens back on the caller's own goroutine: the wait for that goroutine
// (see transaction.go's runRefresh) is itself the happens-before edge, so
// no additional lock is needed. A caller that wants a Set to race a
// Refresh for the same atom must issue them from two goroutines itself,
// same as any other single-threaded kernel.
package atoms
