package atoms

import "sync"

// resolveCtxPool reuses ResolveCtx values across atom evaluations, grounded
// on the teacher's pool_manager.go sync.Pool reuse of ResolveCtx. Unlike the
// teacher, this kernel has no ExecutionCtx or extension-slice concept to
// pool alongside it — there is no flow execution tree here, only
// transactions — so only ResolveCtx and transaction get pools.
var resolveCtxPool = sync.Pool{
	New: func() any { return &ResolveCtx{} },
}

func acquireResolveCtx(store *StoreContext, key atomKey, txn *transaction) *ResolveCtx {
	ctx := resolveCtxPool.Get().(*ResolveCtx)
	ctx.store = store
	ctx.key = key
	ctx.txn = txn
	return ctx
}

func releaseResolveCtx(ctx *ResolveCtx) {
	ctx.store = nil
	ctx.key = atomKey{}
	ctx.txn = nil
	resolveCtxPool.Put(ctx)
}

var transactionPool = sync.Pool{
	New: func() any { return &transaction{} },
}

func acquireTransaction(key atomKey, prevDeps map[atomKey]struct{}) *transaction {
	txn := transactionPool.Get().(*transaction)
	txn.key = key
	txn.prevDeps = prevDeps
	txn.newDeps = make(map[atomKey]struct{})
	txn.onTermination = nil
	txn.isTerminated.Store(false)
	return txn
}

func releaseTransaction(txn *transaction) {
	txn.prevDeps = nil
	txn.newDeps = nil
	txn.onTermination = nil
	transactionPool.Put(txn)
}
