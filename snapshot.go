package atoms

import (
	"fmt"
	"sort"
	"strings"
)

// Observer is fired with a fresh Snapshot after any operation that might
// have changed the externally visible graph: create, release, subscribe,
// update, unsubscribe, restore (§4.8).
type Observer func(Snapshot)

// Snapshot is an immutable point-in-time copy of {graph, caches,
// subscriptions} (§3, §4.8). Grounded on the teacher's pattern of copying a
// slice under lock before iterating (scope.go's exts := make(...); copy(...)
// idiom), applied here to copying the graph/cache/subscription maps before
// handing them to callers.
type Snapshot struct {
	dependencies map[atomKey]map[atomKey]struct{}
	children     map[atomKey]map[atomKey]struct{}
	caches       map[atomKey]cacheEntry
	subscribed   map[atomKey]struct{}

	restoreFn func(sc *StoreContext)
}

// SnapshotLookup returns the value cached under atom's key at the time the snapshot
// was taken, if any.
func SnapshotLookup[T any](s Snapshot, atom *Atom[T]) (T, bool) {
	var zero T
	for _, entry := range s.caches {
		typed, ok := entry.atom.(*Atom[T])
		if !ok || typed != atom {
			continue
		}
		v, ok := entry.value.(T)
		if !ok {
			return zero, false
		}
		return v, true
	}
	return zero, false
}

// Restore overwrites the live store's entries for every key the snapshot
// recorded. This forwards to StoreContext.Restore; kept as a method so
// callers holding only a Snapshot plus the originating StoreContext can
// write either s.Restore(sc) or sc.Restore(s).
func (s Snapshot) Restore(sc *StoreContext) {
	sc.Restore(s)
}

// GraphDescription renders the snapshot's dependency graph as the DOT string
// from spec.md §6, alphabetically sorted and deduplicated.
func (s Snapshot) GraphDescription() string {
	var nodes []string
	var edges []string

	seenNodes := make(map[string]struct{})
	seenEdges := make(map[string]struct{})

	addNode := func(k atomKey) {
		label := fmt.Sprintf("%q", keyLabel(k))
		if _, ok := seenNodes[label]; ok {
			return
		}
		seenNodes[label] = struct{}{}
		nodes = append(nodes, fmt.Sprintf("%s;", label))
	}

	for from, ups := range s.dependencies {
		addNode(from)
		for to := range ups {
			addNode(to)
			edge := fmt.Sprintf("%q -> %q;", keyLabel(from), keyLabel(to))
			if _, ok := seenEdges[edge]; !ok {
				seenEdges[edge] = struct{}{}
				edges = append(edges, edge)
			}
		}
	}
	for k := range s.caches {
		addNode(k)
	}

	sort.Strings(nodes)
	sort.Strings(edges)

	var b strings.Builder
	b.WriteString("digraph {\n  node [shape=box]\n")
	for _, n := range nodes {
		b.WriteString("  ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	for _, e := range edges {
		b.WriteString("  ")
		b.WriteString(e)
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Edges exposes the snapshot's dependency edges as (from, to) pairs, for
// callers (e.g. atoms/extensions.RenderASCII) that want to walk the graph
// themselves instead of parsing the DOT string.
func (s Snapshot) Edges() map[atomKey]map[atomKey]struct{} {
	return s.dependencies
}

// ChildrenEdges exposes the downstream mirror of Edges: for each key, the
// set of keys that depend on it. Kept alongside Edges since spec.md treats
// dependencies/children as two mirror-maintained maps, not one derivable
// from the other at the Snapshot boundary.
func (s Snapshot) ChildrenEdges() map[atomKey]map[atomKey]struct{} {
	return s.children
}

// HasSubscribers reports whether the given atom had at least one live
// subscription at the time the snapshot was taken.
func HasSubscribers[T any](s Snapshot, atom *Atom[T]) bool {
	for key := range s.subscribed {
		if entry, ok := s.caches[key]; ok {
			if typed, ok := entry.atom.(*Atom[T]); ok && typed == atom {
				return true
			}
		}
	}
	return false
}

func keyLabel(k atomKey) string {
	base := sprintKeyValue(k.value)
	if k.isScoped() {
		return base + "@" + string(k.scopeKey)
	}
	return base
}

// Snapshot captures the live store's current state.
func (sc *StoreContext) Snapshot() Snapshot {
	snap := Snapshot{
		dependencies: make(map[atomKey]map[atomKey]struct{}),
		children:     make(map[atomKey]map[atomKey]struct{}),
		caches:       make(map[atomKey]cacheEntry),
		subscribed:   make(map[atomKey]struct{}),
	}
	for k, set := range sc.core.graph.dependencies {
		cp := make(map[atomKey]struct{}, len(set))
		for u := range set {
			cp[u] = struct{}{}
		}
		snap.dependencies[k] = cp
	}
	for k, set := range sc.core.graph.children {
		cp := make(map[atomKey]struct{}, len(set))
		for u := range set {
			cp[u] = struct{}{}
		}
		snap.children[k] = cp
	}
	for k, v := range sc.core.states.caches {
		snap.caches[k] = v
	}
	for k := range sc.core.states.subs {
		if len(sc.core.states.subs[k]) > 0 {
			snap.subscribed[k] = struct{}{}
		}
	}
	return snap
}

// Restore overwrites cache/graph entries for every key in s, computes
// obsoleted upstreams, releases them, then fires each restored key's
// subscriptions exactly once. Observers are notified once at the end
// (§4.4); each upstream released along the way also notifies them, as
// checkAndRelease does, so a Restore that releases keys fires observers
// more than once.
func (sc *StoreContext) Restore(s Snapshot) {
	touched := make(map[atomKey]struct{})

	for key, entry := range s.caches {
		before := sc.core.graph.dependenciesOf(key)

		sc.core.states.setCache(key, entry)
		newDeps := s.dependencies[key]
		removed := sc.core.graph.replaceDependencies(key, before, newDeps)
		for upstream := range removed {
			sc.checkAndRelease(upstream)
		}
		touched[key] = struct{}{}
	}

	for key := range touched {
		for _, sub := range sc.core.states.snapshotSubscriptions(key) {
			sub.update()
		}
	}

	sc.notifyObservers()
}

// notifyObservers builds and fires a Snapshot for every observer on sc and
// every inherited ancestor, but only when at least one list is non-empty
// (§4.8's suppression rule, Design Notes "observer fan-out").
func (sc *StoreContext) notifyObservers() {
	if len(sc.observers) == 0 {
		return
	}
	snap := sc.Snapshot()
	for _, obs := range sc.observers {
		obs(snap)
	}
}
