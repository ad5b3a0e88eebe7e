package extensions

import (
	"sort"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/reactivestate/atoms"
)

// RenderASCII walks snap's dependency graph from root and renders it as a
// terminal tree using m1gwings/treedrawer — the teacher's own go.mod
// declares this dependency but, in the retrieved snapshot, no file ever
// calls it; this finishes that dangling thread with a real call site.
//
// Cycles are impossible by construction (Design Notes: "a producer cannot
// watch itself mid-transaction"), but RenderASCII still guards against
// revisiting a key, in case a caller hands it a hand-built Snapshot.
func RenderASCII(snap atoms.Snapshot, root string) (string, error) {
	t := tree.NewTree(tree.NodeString(root))

	visited := map[string]struct{}{root: {}}
	if err := addChildren(t, snap, root, visited); err != nil {
		return "", err
	}

	return t.String(), nil
}

func addChildren(parent *tree.Tree, snap atoms.Snapshot, label string, visited map[string]struct{}) error {
	children := childLabels(snap, label)
	sort.Strings(children)

	for _, childLabel := range children {
		if _, seen := visited[childLabel]; seen {
			continue
		}
		visited[childLabel] = struct{}{}

		childTree := parent.AddChild(tree.NodeString(childLabel))
		if err := addChildren(childTree, snap, childLabel, visited); err != nil {
			return err
		}
	}
	return nil
}

// childLabels finds every key whose stringified label matches label and
// returns the string labels of the keys depending on it downstream, by
// scanning snap's edges (the snapshot has no string-keyed index, only the
// typed atomKey maps Edges exposes).
func childLabels(snap atoms.Snapshot, label string) []string {
	var out []string
	for from, ups := range snap.Edges() {
		for up := range ups {
			if atomLabel(up) == label {
				out = append(out, atomLabel(from))
			}
		}
	}
	return out
}

func atomLabel(k any) string {
	type stringer interface{ String() string }
	if s, ok := k.(stringer); ok {
		return s.String()
	}
	return "atom"
}
