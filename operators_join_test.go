package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinOperatorDeltaJoin(t *testing.T) {
	// A sends ((1,0),2),((2,0),2) at v=[0,0]; B sends
	// ((1,2),2),((2,3),2) at v=[0,0]. After both frontiers advance to
	// [[1,1]], key 1 contributes (1,(0,2)) mult 4, key 2 contributes
	// (2,(0,3)) mult 4.
	inA := NewStream[Pair[int, int]]()
	inB := NewStream[Pair[int, int]]()
	out := NewStream[Pair[int, Pair[int, int]]]()
	op := newJoinOperator[int, int, int](inA.NewReader(), inB.NewReader(), out)
	outReader := out.NewReader()

	inA.SendData(V(0, 0), FromEntries(E(P(1, 0), 2), E(P(2, 0), 2)))
	inB.SendData(V(0, 0), FromEntries(E(P(1, 2), 2), E(P(2, 3), 2)))
	inA.SendFrontier(Frontier(V(1, 1)))
	inB.SendFrontier(Frontier(V(1, 1)))
	op.Step()

	byKey := map[int]int64{}
	for _, m := range outReader.Drain() {
		if m.Kind != MessageData {
			continue
		}
		for _, e := range m.Batch {
			assert.True(t, m.Version.Equal(V(0, 0)))
			byKey[e.Record.Key] += e.Mult
		}
	}
	assert.Equal(t, int64(4), byKey[1])
	assert.Equal(t, int64(4), byKey[2])
}

func TestJoinOperatorIncrementalUpdateIsDeltaOnly(t *testing.T) {
	// after an initial join result, A retracts key 1's
	// value at a later version with the frontier advancing monotonically;
	// the join must emit only the new delta (mult -4 for key 1), not a
	// re-scan of the full history.
	inA := NewStream[Pair[int, int]]()
	inB := NewStream[Pair[int, int]]()
	out := NewStream[Pair[int, Pair[int, int]]]()
	op := newJoinOperator[int, int, int](inA.NewReader(), inB.NewReader(), out)
	outReader := out.NewReader()

	inA.SendData(V(0, 0), FromEntries(E(P(1, 0), 2), E(P(2, 0), 2)))
	inB.SendData(V(0, 0), FromEntries(E(P(1, 2), 2), E(P(2, 3), 2)))
	inA.SendFrontier(Frontier(V(0, 1)))
	inB.SendFrontier(Frontier(V(0, 1)))
	op.Step()
	outReader.Drain() // discard the initial join output

	inA.SendData(V(0, 1), FromEntries(E(P(1, 0), -2)))
	inA.SendFrontier(Frontier(V(0, 2)))
	inB.SendFrontier(Frontier(V(0, 2)))
	op.Step()

	var total int64
	var n int
	for _, m := range outReader.Drain() {
		if m.Kind != MessageData {
			continue
		}
		for _, e := range m.Batch {
			n++
			total += e.Mult
			assert.Equal(t, 1, e.Record.Key)
		}
	}
	require.Equal(t, 1, n, "only the new delta should be emitted, not a re-scan")
	assert.Equal(t, int64(-4), total)
}

func TestJoinOperatorWithholdsFrontierUntilBothSidesReport(t *testing.T) {
	// Mirrors the Concat regression: data arriving on both sides before
	// either has sent a real frontier must not cause the join to emit a
	// bogus, fully-closed frontier it could never later correct.
	inA := NewStream[Pair[int, int]]()
	inB := NewStream[Pair[int, int]]()
	out := NewStream[Pair[int, Pair[int, int]]]()
	op := newJoinOperator[int, int, int](inA.NewReader(), inB.NewReader(), out)
	outReader := out.NewReader()

	inA.SendData(V(0), FromEntries(E(P(1, 1), 1)))
	inB.SendData(V(0), FromEntries(E(P(1, 1), 1)))
	op.Step()
	for _, m := range outReader.Drain() {
		assert.NotEqual(t, MessageFrontier, m.Kind, "neither side has reported a frontier yet")
	}

	inA.SendFrontier(Frontier(V(5)))
	inB.SendFrontier(Frontier(V(5)))
	op.Step()

	assert.True(t, op.indexA.CompactionFrontier().Equal(Frontier(V(5))))
	assert.True(t, op.indexB.CompactionFrontier().Equal(Frontier(V(5))))
}

func TestJoinOperatorCompactsOnFrontierAdvance(t *testing.T) {
	inA := NewStream[Pair[int, int]]()
	inB := NewStream[Pair[int, int]]()
	out := NewStream[Pair[int, Pair[int, int]]]()
	op := newJoinOperator[int, int, int](inA.NewReader(), inB.NewReader(), out)

	inA.SendData(V(0), FromEntries(E(P(1, 1), 1)))
	inB.SendData(V(0), FromEntries(E(P(1, 1), 1)))
	inA.SendFrontier(Frontier(V(5)))
	inB.SendFrontier(Frontier(V(5)))
	op.Step()

	assert.True(t, op.indexA.CompactionFrontier().Equal(Frontier(V(5))))
	assert.True(t, op.indexB.CompactionFrontier().Equal(Frontier(V(5))))
}
