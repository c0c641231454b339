package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAddAndReconstruct(t *testing.T) {
	idx := NewIndex[string, int]()
	idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1})
	idx.AddValue("k", V(1), ValMult[int]{Value: 2, Mult: 1})

	at0 := idx.ReconstructAt("k", V(0))
	require.Len(t, at0, 1)

	at1 := idx.ReconstructAt("k", V(1))
	require.Len(t, at1, 2)

	// Unknown-key lookup is permitted, returns empty.
	assert.Empty(t, idx.ReconstructAt("missing", V(5)))
}

func TestIndexAppend(t *testing.T) {
	a := NewIndex[string, int]()
	a.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1})
	b := NewIndex[string, int]()
	b.AddValue("k", V(1), ValMult[int]{Value: 2, Mult: 1})

	a.Append(b)
	assert.Len(t, a.ReconstructAt("k", V(1)), 2)
}

func TestIndexAddBelowCompactionFrontierPanics(t *testing.T) {
	idx := NewIndex[string, int]()
	idx.Compact(Frontier(V(2)))
	assert.Panics(t, func() {
		idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1})
	})
}

func TestIndexCompactRegressionPanics(t *testing.T) {
	idx := NewIndex[string, int]()
	idx.Compact(Frontier(V(2)))
	assert.Panics(t, func() {
		idx.Compact(Frontier(V(1)))
	})
}

func TestIndexCompactPreservesReconstruction(t *testing.T) {
	// build an index with entries at versions [0,0], [0,1],
	// [1,0] for key k, compact at frontier [[1,1]], and confirm
	// reconstruction at any q >= [1,1] is unchanged.
	idx := NewIndex[string, int]()
	idx.AddValue("k", V(0, 0), ValMult[int]{Value: 1, Mult: 1})
	idx.AddValue("k", V(0, 1), ValMult[int]{Value: 2, Mult: 1})
	idx.AddValue("k", V(1, 0), ValMult[int]{Value: 3, Mult: 1})

	q := V(2, 2)
	before := consolidateValMult(idx.ReconstructAt("k", q))

	idx.Compact(Frontier(V(1, 1)))

	after := consolidateValMult(idx.ReconstructAt("k", q))
	assert.Equal(t, before, after)
}

func TestIndexCompactConsolidatesDuplicateEntries(t *testing.T) {
	idx := NewIndex[string, int]()
	idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1})
	idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1})
	idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: -2})

	idx.Compact(Frontier(V(0)))

	got := idx.ReconstructAt("k", V(0))
	assert.Empty(t, got)
}

func TestIndexJoin(t *testing.T) {
	a := NewIndex[int, string]()
	a.AddValue(1, V(0, 0), ValMult[string]{Value: "a1", Mult: 2})
	a.AddValue(2, V(0, 0), ValMult[string]{Value: "a2", Mult: 1})

	b := NewIndex[int, string]()
	b.AddValue(1, V(0, 0), ValMult[string]{Value: "b1", Mult: 3})

	out := IndexJoin(a, b)
	require.Len(t, out, 1)
	assert.True(t, out[0].Version.Equal(V(0, 0)))
	require.Len(t, out[0].Data, 1)
	assert.Equal(t, int64(6), out[0].Data[0].Mult)
	assert.Equal(t, 1, out[0].Data[0].Record.Key)
}

func TestIndexJoinVersionIsJoinOfInputVersions(t *testing.T) {
	a := NewIndex[int, string]()
	a.AddValue(1, V(0, 1), ValMult[string]{Value: "a", Mult: 1})

	b := NewIndex[int, string]()
	b.AddValue(1, V(1, 0), ValMult[string]{Value: "b", Mult: 1})

	out := IndexJoin(a, b)
	require.Len(t, out, 1)
	assert.True(t, out[0].Version.Equal(V(1, 1)))
}
