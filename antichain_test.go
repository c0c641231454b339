package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAntichainMinimality(t *testing.T) {
	var a Antichain
	a.Insert(V(1, 1))
	a.Insert(V(0, 0)) // dominates [1,1]; should remove it
	require.Len(t, a.Elements(), 1)
	assert.True(t, a.Elements()[0].Equal(V(0, 0)))

	a.Insert(V(2, 2)) // dominated by [0,0]; discarded
	assert.Len(t, a.Elements(), 1)
}

func TestAntichainIncomparable(t *testing.T) {
	a := Frontier(V(1, 0), V(0, 1))
	assert.Len(t, a.Elements(), 2)
}

func TestAntichainLessEqualVersion(t *testing.T) {
	f := Frontier(V(1, 1))
	assert.True(t, f.LessEqualVersion(V(1, 1)))
	assert.True(t, f.LessEqualVersion(V(2, 2)))
	assert.False(t, f.LessEqualVersion(V(0, 0)))
}

func TestAntichainOrder(t *testing.T) {
	f := Frontier(V(0, 0))
	g := Frontier(V(1, 1))
	assert.True(t, f.LessEqual(g))
	assert.False(t, g.LessEqual(f))
	assert.True(t, f.Less(g))
	assert.True(t, f.LessEqual(f))
	assert.False(t, f.Less(f))
}

func TestAntichainMeet(t *testing.T) {
	f := Frontier(V(1, 0))
	g := Frontier(V(0, 1))
	m := f.Meet(g)
	assert.Len(t, m.Elements(), 2)
}

func TestAntichainScopeOps(t *testing.T) {
	f := Frontier(V(1, 2))
	assert.True(t, f.Extend().Elements()[0].Equal(V(1, 2, 0)))
	assert.True(t, f.Extend().Truncate().Elements()[0].Equal(V(1, 2)))
	assert.True(t, f.ApplyStep(3).Elements()[0].Equal(V(1, 5)))
}

func TestAdvanceBy(t *testing.T) {
	t.Run("empty_frontier_is_identity", func(t *testing.T) {
		v := V(3, 4)
		assert.True(t, AdvanceBy(v, Antichain{}).Equal(v))
	})

	t.Run("advances_to_frontier_join", func(t *testing.T) {
		f := Frontier(V(1, 1))
		got := AdvanceBy(V(0, 0), f)
		assert.True(t, got.Equal(V(1, 1)))
	})

	t.Run("preserves_order_relative_to_open_versions", func(t *testing.T) {
		// Invariant: AdvanceBy(v, F).LessEqual(u) iff v.LessEqual(u),
		// for every u >= every element of F.
		f := Frontier(V(1, 1))
		v := V(0, 1)
		u := V(2, 2)
		advanced := AdvanceBy(v, f)
		assert.Equal(t, v.LessEqual(u), advanced.LessEqual(u))
	})
}

func TestAntichainString(t *testing.T) {
	f := Frontier(V(1, 1), V(0, 2))
	s := f.String()
	assert.Contains(t, s, "[1,1]")
	assert.Contains(t, s, "[0,2]")
}
