package atoms

import (
	"fmt"
	"runtime/debug"
)

// EvalError wraps a panic recovered from a producer's Refresh hook with the
// key under evaluation and a captured stack trace, grounded on the teacher's
// errors.go ResolveError/CreateResolveError (runtime/debug.Stack()).
// Per spec.md §7, the kernel itself has no recoverable errors on its public
// surface; errors returned by Produce, an override, or Refresh propagate to
// the caller as returned, not wrapped in this type.
type EvalError struct {
	Key        string
	Cause      error
	StackTrace string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("atoms: evaluating %s: %v", e.Key, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

func newEvalError(key atomKey, cause error) *EvalError {
	return &EvalError{
		Key:        fmt.Sprintf("%v", key.value),
		Cause:      cause,
		StackTrace: string(debug.Stack()),
	}
}

// keyCollisionError is never returned to a caller. §4.9/§7: the only way a
// downcast fails is a user-defined key collision across atom types; the
// kernel logs one of these as a diagnostic (via the active logging
// extension, if any) and drops the offending key as a safe fallback.
type keyCollisionError struct {
	Key      atomKey
	Expected string
	Got      string
}

func (e *keyCollisionError) Error() string {
	return fmt.Sprintf("atoms: key collision on %v: expected %s, got %s", e.Key.value, e.Expected, e.Got)
}

// overrideTypeError reports §7's "illegal override" failure mode: a stored
// override's produced value doesn't assert to the queried atom's type.
// Unlike keyCollisionError it has no safe fallback value to drop back to
// (there is no prior cache entry to recreate from), so it propagates to the
// caller like any other producer error.
type overrideTypeError struct {
	Key atomKey
}

func (e *overrideTypeError) Error() string {
	return fmt.Sprintf("atoms: override type mismatch on %v", e.Key.value)
}
