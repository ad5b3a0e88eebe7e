package atoms

// OperationKind labels the kernel operation an Operation describes,
// generalized from the teacher's OpResolve/OpUpdate pair to one kind per
// public kernel operation. The kernel currently passes OpWatch for every
// wrapped atom evaluation and OpRead for key-collision reports to OnError;
// the other kinds are not emitted.
type OperationKind int

const (
	OpRead OperationKind = iota
	OpWatch
	OpSet
	OpModify
	OpRefresh
	OpReset
	OpLookup
	OpUnwatch
	OpSnapshot
	OpRestore
)

func (k OperationKind) String() string {
	switch k {
	case OpRead:
		return "read"
	case OpWatch:
		return "watch"
	case OpSet:
		return "set"
	case OpModify:
		return "modify"
	case OpRefresh:
		return "refresh"
	case OpReset:
		return "reset"
	case OpLookup:
		return "lookup"
	case OpUnwatch:
		return "unwatch"
	case OpSnapshot:
		return "snapshot"
	case OpRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Operation describes one kernel call to an Extension's Wrap hook, grounded
// on the teacher's extension.go Operation{Kind, Executor, Scope}, generalized
// from Executor/Scope to Key/StoreContext since this kernel has atoms and
// store contexts rather than executors and scopes.
type Operation struct {
	Kind  OperationKind
	Key   string
	Store *StoreContext
}

// Extension is the cross-cutting middleware interface, ported from the
// teacher's extension.go Extension interface. Wrap runs around each atom
// evaluation (a producer or override run that creates or re-evaluates a
// cache, whether reached through Read, WatchSub, Watch, Refresh, Reset or
// propagation); Set, Modify, Lookup, Unwatch, Snapshot and Restore are not
// wrapped themselves, and an async Refresh hook runs outside Wrap.
type Extension interface {
	Name() string
	Order() int

	// Wrap lets the extension run code around a kernel operation; it must
	// call next() itself if it wants the operation to proceed.
	Wrap(op Operation, next func() (any, error)) (any, error)

	// OnError is called whenever a producer hook returns an error that
	// propagates out of a kernel operation.
	OnError(op Operation, err error)

	// OnRelease is called whenever checkAndRelease actually frees a key.
	OnRelease(key string)
}

// BaseExtension supplies no-op defaults for every Extension hook, exactly
// like the teacher's BaseExtension, so implementers override only what they
// need.
type BaseExtension struct{}

func (BaseExtension) Name() string { return "base" }
func (BaseExtension) Order() int   { return 0 }

func (BaseExtension) Wrap(_ Operation, next func() (any, error)) (any, error) {
	return next()
}

func (BaseExtension) OnError(_ Operation, _ error) {}
func (BaseExtension) OnRelease(_ string)            {}
