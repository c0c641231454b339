package dataflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestConsolidateRaw(t *testing.T) {
	c := FromEntries(E(1, 2), E(2, -1), E(1, -2), E(3, 1), E(2, 1))
	got := ConsolidateRaw(c, intLess)
	want := Collection[int]{E(3, 1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("consolidate mismatch (-want +got):\n%s", diff)
	}
}

func TestConcatNegateConsolidateIsEmpty(t *testing.T) {
	// Algebraic invariant: consolidate(concat(A, negate(A))) is empty.
	a := FromEntries(E(1, 2), E(2, 3), E(1, -1))
	combined := ConcatRaw(a, NegateRaw(a))
	got := ConsolidateRaw(combined, intLess)
	assert.Empty(t, got)
}

func TestMapConsolidateCommute(t *testing.T) {
	// map(f, consolidate(A)) == consolidate(map(f, A))
	a := FromEntries(E(1, 2), E(1, -1), E(2, 3))
	f := func(x int) int { return x * 10 }

	lhs := ConsolidateRaw(MapRaw(a, f), intLess)
	rhs := MapRaw(ConsolidateRaw(a, intLess), f)
	assert.Equal(t, lhs, rhs)
}

func TestFilterNegateCommute(t *testing.T) {
	// filter(p, negate(A)) == negate(filter(p, A))
	a := FromEntries(E(1, 2), E(2, -3), E(3, 1))
	even := func(x int) bool { return x%2 == 0 }

	lhs := FilterRaw(NegateRaw(a), even)
	rhs := NegateRaw(FilterRaw(a, even))
	assert.Equal(t, lhs, rhs)
}

func TestJoinRaw(t *testing.T) {
	a := FromEntries(E(P(1, "x"), 2), E(P(2, "y"), 3))
	b := FromEntries(E(P(1, 10), 5))
	got := JoinRaw(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Record.Key)
	assert.Equal(t, "x", got[0].Record.Value.Key)
	assert.Equal(t, 10, got[0].Record.Value.Value)
}

func TestJoinRawCommutativeUpToReorder(t *testing.T) {
	a := FromEntries(E(P(1, "x"), 2), E(P(2, "y"), 3))
	b := FromEntries(E(P(1, 10), 5), E(P(2, 20), 7))

	ab := JoinRaw(a, b)
	ba := JoinRaw(b, a)

	require.Len(t, ab, 2)
	require.Len(t, ba, 2)

	totalAB := int64(0)
	for _, e := range ab {
		totalAB += e.Mult
	}
	totalBA := int64(0)
	for _, e := range ba {
		totalBA += e.Mult
	}
	assert.Equal(t, totalAB, totalBA)
}

func TestReduceRawGroupsByKey(t *testing.T) {
	c := FromEntries(E(P("a", 1), 2), E(P("a", 2), 3), E(P("b", 5), 1))
	got := ReduceRaw(c, func(_ string, vs []ValMult[int]) []ValMult[int] {
		var sum int64
		for _, v := range vs {
			sum += int64(v.Value) * v.Mult
		}
		return []ValMult[int]{{Value: int(sum), Mult: 1}}
	})
	byKey := map[string]int{}
	for _, e := range got {
		byKey[e.Record.Key] = e.Record.Value
	}
	assert.Equal(t, 8, byKey["a"])
	assert.Equal(t, 5, byKey["b"])
}
