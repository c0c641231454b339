package dataflow

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Antichain is a minimal set of pairwise-incomparable [Version] values,
// representing the closed upper set {v : exists f in F, f <= v}. It is used
// throughout the engine as a "frontier": a progress boundary below which no
// further data will ever be observed.
//
// Antichains are small in practice (a handful of elements at most), so,
// favoring a flat slice plus linear scans over a balanced tree for small,
// hot, generic collections, Antichain is backed by a flat,
// insertion-deduplicated slice.
type Antichain struct {
	elems []Version
}

// Frontier constructs an Antichain from the given versions, discarding any
// that are dominated by another.
func Frontier(vs ...Version) Antichain {
	var a Antichain
	for _, v := range vs {
		a.Insert(v)
	}
	return a
}

// Elements returns a defensive copy of the antichain's elements.
func (a Antichain) Elements() []Version {
	cp := make([]Version, len(a.elems))
	copy(cp, a.elems)
	return cp
}

// IsEmpty reports whether the antichain has no elements (representing the
// empty upper set: no version is considered open).
func (a Antichain) IsEmpty() bool { return len(a.elems) == 0 }

// Insert adds e to the antichain, maintaining minimality: e is discarded if
// any existing element is <= e; otherwise every existing element >= e is
// removed before e is added.
func (a *Antichain) Insert(e Version) {
	for _, f := range a.elems {
		if f.LessEqual(e) {
			return
		}
	}
	kept := a.elems[:0:0]
	for _, f := range a.elems {
		if !e.LessEqual(f) {
			kept = append(kept, f)
		}
	}
	a.elems = append(kept, e)
}

// LessEqualVersion reports whether some element of a is <= v (i.e. v has
// not yet been passed by the frontier).
func (a Antichain) LessEqualVersion(v Version) bool {
	for _, f := range a.elems {
		if f.LessEqual(v) {
			return true
		}
	}
	return false
}

// LessEqual reports whether a <= b: every element of b dominates (is >=)
// some element of a.
func (a Antichain) LessEqual(b Antichain) bool {
	for _, g := range b.elems {
		if !a.dominatesSome(g) {
			return false
		}
	}
	return true
}

func (a Antichain) dominatesSome(g Version) bool {
	for _, f := range a.elems {
		if f.LessEqual(g) {
			return true
		}
	}
	return false
}

// Equal reports whether a and b contain the same set of elements.
func (a Antichain) Equal(b Antichain) bool {
	if len(a.elems) != len(b.elems) {
		return false
	}
	return a.LessEqual(b) && b.LessEqual(a)
}

// Less reports whether a <= b and a != b.
func (a Antichain) Less(b Antichain) bool {
	return a.LessEqual(b) && !a.Equal(b)
}

// Meet returns the antichain formed by inserting every element of both a
// and b (the greatest frontier dominated by both).
func (a Antichain) Meet(b Antichain) Antichain {
	var out Antichain
	for _, f := range a.elems {
		out.Insert(f)
	}
	for _, g := range b.elems {
		out.Insert(g)
	}
	return out
}

// Extend extends every element (see Version.Extend).
func (a Antichain) Extend() Antichain {
	var out Antichain
	for _, f := range a.elems {
		out.Insert(f.Extend())
	}
	return out
}

// Truncate truncates every element (see Version.Truncate).
func (a Antichain) Truncate() Antichain {
	var out Antichain
	for _, f := range a.elems {
		out.Insert(f.Truncate())
	}
	return out
}

// ApplyStep applies a step to every element (see Version.ApplyStep).
func (a Antichain) ApplyStep(k int64) Antichain {
	var out Antichain
	for _, f := range a.elems {
		out.Insert(f.ApplyStep(k))
	}
	return out
}

// AdvanceBy returns the coarsest version v' >= v such that, for every u >=
// every element of frontier, v <= u iff v' <= u. An empty frontier leaves v
// unchanged (there is no element to join v with).
//
// This is the operation compaction relies on to relocate a historical
// version to the earliest version indistinguishable from it, with respect
// to the frontier's upper set.
func AdvanceBy(v Version, frontier Antichain) Version {
	if frontier.IsEmpty() {
		return v
	}
	result := v.Join(frontier.elems[0])
	for _, f := range frontier.elems[1:] {
		result = result.Meet(v.Join(f))
	}
	return result
}

// sortedElements returns a's elements sorted by coordinate, for stable
// diagnostic output; it does not affect the set's semantics.
func (a Antichain) sortedElements() []Version {
	out := a.Elements()
	slices.SortFunc(out, func(x, y Version) int {
		switch xk, yk := x.key(), y.key(); {
		case xk < yk:
			return -1
		case xk > yk:
			return 1
		default:
			return 0
		}
	})
	return out
}

// String renders the antichain as e.g. "{[0,0],[1,1]}".
func (a Antichain) String() string {
	parts := make([]string, 0, len(a.elems))
	for _, v := range a.sortedElements() {
		parts = append(parts, v.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
