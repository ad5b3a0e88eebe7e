package atoms

import "reflect"

// Override is a substitute producer installed at the scope level, indexed
// either by concrete atom key or by atom type (§3, §4.5, §6). Grounded on the
// teacher's scope.go preset/presets map[AnyExecutor]preset plus WithPreset,
// generalized from a single concrete-key table into the two-level table with
// an isScoped flag spec.md requires — the teacher's domain has no scope
// hierarchy so never needed type-level fallback or re-keying.
type Override struct {
	produce  func(atom AnyAtom) (any, error)
	isScoped bool
}

// ScopeOverride is what callers pass to Scoped/Inherited/WithRootOverride to
// install an Override.
type ScopeOverride struct {
	byKey    *any
	byType   reflect.Type
	override Override
}

// OverrideValue installs a concrete-key override returning a fixed value for
// exactly this atom.
func OverrideValue[T any](atom *Atom[T], value T) ScopeOverride {
	key := atom.keyValue()
	return ScopeOverride{
		byKey: &key,
		override: Override{
			produce: func(AnyAtom) (any, error) { return value, nil },
		},
	}
}

// OverrideValueScoped is OverrideValue plus the scoped re-keying behavior:
// matching atoms are pulled into the current scope's key space (§4.5 step 2).
func OverrideValueScoped[T any](atom *Atom[T], value T) ScopeOverride {
	ov := OverrideValue(atom, value)
	ov.override.isScoped = true
	return ov
}

// OverrideProducer installs a concrete-key override backed by an arbitrary
// producer function instead of a fixed value.
func OverrideProducer[T any](atom *Atom[T], produce func(*Atom[T]) (T, error)) ScopeOverride {
	key := atom.keyValue()
	return ScopeOverride{
		byKey: &key,
		override: Override{
			produce: func(a AnyAtom) (any, error) {
				typed, _ := a.(*Atom[T])
				return produce(typed)
			},
		},
	}
}

// OverrideType installs a type-key override applying to every atom of type T
// lacking a more specific concrete-key override (§4.5 step 1, §8 property 7).
func OverrideType[T any](produce func(*Atom[T]) (T, error)) ScopeOverride {
	return ScopeOverride{
		byType: typeTagOf[T](),
		override: Override{
			produce: func(a AnyAtom) (any, error) {
				typed, _ := a.(*Atom[T])
				return produce(typed)
			},
		},
	}
}

// OverrideTypeScoped is OverrideType with isScoped set.
func OverrideTypeScoped[T any](produce func(*Atom[T]) (T, error)) ScopeOverride {
	ov := OverrideType(produce)
	ov.override.isScoped = true
	return ov
}

// overrideTable is the per-context two-level lookup: concrete key first,
// then atom type, matching §4.5/§8 property 7's precedence rule.
type overrideTable struct {
	byKey  map[any]Override
	byType map[reflect.Type]Override
}

func newOverrideTable() *overrideTable {
	return &overrideTable{
		byKey:  make(map[any]Override),
		byType: make(map[reflect.Type]Override),
	}
}

func (t *overrideTable) install(so ScopeOverride) {
	switch {
	case so.byKey != nil:
		t.byKey[*so.byKey] = so.override
	case so.byType != nil:
		t.byType[so.byType] = so.override
	}
}

// lookup resolves an override for atom, concrete key first then type,
// reporting which (if any) applies.
func (t *overrideTable) lookup(atom AnyAtom) (Override, bool) {
	if ov, ok := t.byKey[atom.keyValue()]; ok {
		return ov, true
	}
	if ov, ok := t.byType[atom.typeTag()]; ok {
		return ov, true
	}
	return Override{}, false
}
