package atoms

import (
	"reflect"

	"github.com/google/uuid"
)

// ScopeKey is the unique token identifying one scope instance. Unlike the
// teacher's process-local atomic.Uint64 scope counter, ScopeKey is UUID-backed
// so that keys generated across independently created stores — including ones
// rehydrated from a Snapshot on a different process — never collide.
type ScopeKey string

// NewScopeKey mints a fresh, globally unique ScopeKey.
func NewScopeKey() ScopeKey {
	return ScopeKey(uuid.NewString())
}

// noScope is the zero ScopeKey, meaning "unscoped".
const noScope ScopeKey = ""

// SubscriberKey identifies one Subscriber within the subscriptions recorded
// for a single atom key.
type SubscriberKey string

func newSubscriberKey() SubscriberKey {
	return SubscriberKey(uuid.NewString())
}

// atomKey is the sole map key used throughout the kernel, per the
// arena-plus-index guidance: keys live in hash maps, never as bare object
// pointers. Two atoms are equivalent iff their type tag and key value match
// under the same scope.
type atomKey struct {
	typeTag  reflect.Type
	value    any
	scopeKey ScopeKey
}

func (k atomKey) isScoped() bool {
	return k.scopeKey != noScope
}

func newAtomKey(typeTag reflect.Type, value any, scope ScopeKey) atomKey {
	return atomKey{typeTag: typeTag, value: value, scopeKey: scope}
}

// rekeyed returns k reassigned to a different scope, used when a scoped
// override forces an atom to be re-keyed into the current scope.
func (k atomKey) rekeyed(scope ScopeKey) atomKey {
	k.scopeKey = scope
	return k
}

// String satisfies fmt.Stringer so atomKey values crossing into
// atoms/extensions via Snapshot.Edges (which returns them boxed as any, the
// type itself being unexported) still render as a meaningful label instead
// of a generic placeholder.
func (k atomKey) String() string {
	return keyLabel(k)
}
