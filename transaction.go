package atoms

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// transaction is the bounded context for one evaluation of one atom (§4.2).
// Grounded on the teacher's flow.go executeFlow cancellation plumbing
// (goroutine + ctx.Done() select + recover()), generalized: where the
// teacher only cancels one flow execution, a transaction cancels a single
// atom's evaluation, and starting a new one for the same key always
// terminates the prior one first — behavior the teacher never needed
// because it never re-evaluates the same flow reentrantly.
type transaction struct {
	key atomKey

	isTerminated  atomic.Bool
	onTermination []func()

	prevDeps map[atomKey]struct{}
	newDeps  map[atomKey]struct{}
}

func (t *transaction) recordDependency(upstream atomKey) {
	t.newDeps[upstream] = struct{}{}
}

func (t *transaction) terminated() bool {
	return t.isTerminated.Load()
}

// terminate flips isTerminated and runs every registered cleanup, exactly
// once, in registration order.
func (t *transaction) terminate() {
	if !t.isTerminated.CompareAndSwap(false, true) {
		return
	}
	for _, fn := range t.onTermination {
		fn()
	}
}

func (t *transaction) onTerminate(fn func()) {
	t.onTermination = append(t.onTermination, fn)
}

// beginTransaction starts a fresh transaction for key, first terminating any
// transaction already in flight for that key (§4.2), and detaches key's
// current dependency edges from the graph so the producer's re-run can
// re-record only what it actually watches this time (§4.3).
func beginTransaction(sc *StoreContext, key atomKey) *transaction {
	core := sc.core

	if prior := core.states.currentTxn(key); prior != nil {
		prior.terminate()
	}

	prevDeps := core.graph.detachDependencies(key)
	txn := acquireTransaction(key, prevDeps)
	txn.onTerminate(func() {
		core.history.record(HistoryEntry{Key: keyString(key), Status: StatusTerminated})
	})
	core.states.setTxn(key, txn)
	return txn
}

// commitTransaction finalizes txn: obsoleted upstreams (watched by the prior
// run but not re-watched by this one) are put through checkAndRelease, since
// losing a child edge may make them releasable. The transaction is then
// returned to transactionPool — but only after clearing it from the state
// table's current-transaction slot, so a later beginTransaction on the same
// key never calls terminate() on a pooled-and-reused transaction it no
// longer owns.
func commitTransaction(sc *StoreContext, txn *transaction) {
	for upstream := range txn.prevDeps {
		if _, stillWatched := txn.newDeps[upstream]; !stillWatched {
			sc.checkAndRelease(upstream)
		}
	}
	if sc.core.states.currentTxn(txn.key) == txn {
		sc.core.states.setTxn(txn.key, nil)
	}
	releaseTransaction(txn)
}

// watchForTxn is the producer-side watch(atom, txn) operation (§4.4): it
// resolves upstream's effective key, ensures its cache exists, records the
// graph edge both ways, and records the dependency into txn's newDeps so
// the owning transaction can diff it at commit time.
func watchForTxn[T any](sc *StoreContext, upstream *Atom[T], txn *transaction) (T, error) {
	key, err := ensureCache(sc, upstream)
	if err != nil {
		var zero T
		return zero, err
	}

	sc.core.graph.addEdge(txn.key, key)
	txn.recordDependency(key)

	return readCacheValue[T](sc, key)
}

// runRefresh launches atom's async Refresh hook the way the teacher's
// executeFlow launches flow.factory: a goroutine plus panic recovery plus a
// buffered result channel, replaced here with golang.org/x/sync/errgroup for
// the idiomatic version of the same launch/join/cancel pattern. errgroup
// doesn't recover panics itself, so the recover() block stays inside the
// errgroup.Go closure — same safety net, cleaner plumbing.
func runRefresh[T any](ctx context.Context, sc *StoreContext, atom *Atom[T], rctx *ResolveCtx, txn *transaction) (T, error) {
	var (
		result T
		zero   T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = newEvalError(txn.key, panicToError(r))
			}
		}()
		result, err = atom.producer.Refresh(gctx, rctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return zero, err
	}

	select {
	case <-ctx.Done():
		// Cooperative cancellation fired after the work completed but
		// before we got to observe it: discard, per §5 Cancellation.
		return zero, ctx.Err()
	default:
	}

	if txn.terminated() {
		// A set/reset raced ahead of this refresh and terminated its
		// transaction; the result is discarded silently (§5, §7).
		return zero, nil
	}

	return result, nil
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{v: r}
}

type panicValue struct{ v any }

func (p *panicValue) Error() string { return "panic: " + toString(p.v) }

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return "non-string panic value"
}
