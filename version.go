package dataflow

import (
	"fmt"
	"strings"
)

// Version is a tuple of non-negative integers of fixed length (the
// dimension, or depth, of the scope it belongs to), ordered by the product
// partial order: u <= v iff u[i] <= v[i] for every coordinate i.
//
// Versions are immutable; every method that would "modify" a Version
// instead returns a new one. The zero Version{} has dimension 0 and is only
// useful as a placeholder.
type Version struct {
	coords []int64
}

// V constructs a Version from its coordinates. V() (no arguments) is the
// unique dimension-0 version.
func V(coords ...int64) Version {
	cp := make([]int64, len(coords))
	copy(cp, coords)
	return Version{coords: cp}
}

// Dim returns the version's dimension.
func (v Version) Dim() int { return len(v.coords) }

// At returns the i'th coordinate.
func (v Version) At(i int) int64 { return v.coords[i] }

// Coords returns a defensive copy of the version's coordinates.
func (v Version) Coords() []int64 {
	cp := make([]int64, len(v.coords))
	copy(cp, v.coords)
	return cp
}

func (v Version) requireSameDim(u Version) {
	if len(v.coords) != len(u.coords) {
		dimensionMismatch(len(v.coords), len(u.coords))
	}
}

// Equal reports whether v and u have identical coordinates.
func (v Version) Equal(u Version) bool {
	v.requireSameDim(u)
	for i := range v.coords {
		if v.coords[i] != u.coords[i] {
			return false
		}
	}
	return true
}

// LessEqual reports whether v <= u under the product order.
func (v Version) LessEqual(u Version) bool {
	v.requireSameDim(u)
	for i := range v.coords {
		if v.coords[i] > u.coords[i] {
			return false
		}
	}
	return true
}

// LessThan reports whether v <= u and v != u.
func (v Version) LessThan(u Version) bool {
	return v.LessEqual(u) && !v.Equal(u)
}

// Join returns the componentwise maximum of v and u (the least upper bound).
func (v Version) Join(u Version) Version {
	v.requireSameDim(u)
	out := make([]int64, len(v.coords))
	for i := range v.coords {
		out[i] = max64(v.coords[i], u.coords[i])
	}
	return Version{coords: out}
}

// Meet returns the componentwise minimum of v and u (the greatest lower bound).
func (v Version) Meet(u Version) Version {
	v.requireSameDim(u)
	out := make([]int64, len(v.coords))
	for i := range v.coords {
		out[i] = min64(v.coords[i], u.coords[i])
	}
	return Version{coords: out}
}

// Extend appends a trailing 0 coordinate, entering a deeper iteration scope
// (dimension D -> D+1).
func (v Version) Extend() Version {
	out := make([]int64, len(v.coords)+1)
	copy(out, v.coords)
	return Version{coords: out}
}

// Truncate drops the trailing coordinate, leaving a scope (dimension
// D -> D-1). Truncating a dimension-0 version is a programmer error.
func (v Version) Truncate() Version {
	if len(v.coords) == 0 {
		panic("dataflow: cannot truncate a dimension-0 version")
	}
	out := make([]int64, len(v.coords)-1)
	copy(out, v.coords[:len(v.coords)-1])
	return Version{coords: out}
}

// ApplyStep adds k to the trailing coordinate. Applying a step to a
// dimension-0 version is a programmer error.
func (v Version) ApplyStep(k int64) Version {
	if len(v.coords) == 0 {
		panic("dataflow: cannot apply a step to a dimension-0 version")
	}
	out := make([]int64, len(v.coords))
	copy(out, v.coords)
	out[len(out)-1] += k
	return Version{coords: out}
}

// key returns a hashable/comparable/sortable representation of v, used
// internally wherever a Version is a map key (Index, consolidate buffers).
func (v Version) key() string {
	var b strings.Builder
	for i, c := range v.coords {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", c)
	}
	return b.String()
}

// String renders the version as e.g. "[0,2,1]".
func (v Version) String() string {
	parts := make([]string, len(v.coords))
	for i, c := range v.coords {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
