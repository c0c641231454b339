package dataflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func recoverPanic(f func()) (recovered any) {
	defer func() { recovered = recover() }()
	f()
	return nil
}

func TestErrorSentinelsSurfaceOnPanic(t *testing.T) {
	t.Run("frontier_regression", func(t *testing.T) {
		s := NewStream[int]()
		s.SendFrontier(Frontier(V(2)))
		r := recoverPanic(func() { s.SendFrontier(Frontier(V(1))) })
		err, ok := r.(error)
		assert.True(t, ok)
		assert.True(t, errors.Is(err, ErrFrontierRegression))
	})

	t.Run("data_below_frontier", func(t *testing.T) {
		s := NewStream[int]()
		s.SendFrontier(Frontier(V(2)))
		r := recoverPanic(func() { s.SendData(V(0), FromEntries(E(1, 1))) })
		err, ok := r.(error)
		assert.True(t, ok)
		assert.True(t, errors.Is(err, ErrDataBelowFrontier))
	})

	t.Run("compaction_regression", func(t *testing.T) {
		idx := NewIndex[string, int]()
		idx.Compact(Frontier(V(2)))
		r := recoverPanic(func() { idx.Compact(Frontier(V(1))) })
		err, ok := r.(error)
		assert.True(t, ok)
		assert.True(t, errors.Is(err, ErrCompactionRegression))
	})

	t.Run("negative_multiplicity", func(t *testing.T) {
		c := FromEntries(E(P("k", "x"), -1))
		r := recoverPanic(func() { DistinctRaw(c) })
		err, ok := r.(error)
		assert.True(t, ok)
		assert.True(t, errors.Is(err, ErrNegativeMultiplicity))
	})

	t.Run("version_below_compaction_frontier", func(t *testing.T) {
		idx := NewIndex[string, int]()
		idx.Compact(Frontier(V(2)))
		r := recoverPanic(func() { idx.AddValue("k", V(0), ValMult[int]{Value: 1, Mult: 1}) })
		err, ok := r.(error)
		assert.True(t, ok)
		assert.True(t, errors.Is(err, ErrVersionBelowCompactionFrontier))
	})

	t.Run("dimension_mismatch", func(t *testing.T) {
		r := recoverPanic(func() { V(1).LessEqual(V(1, 1)) })
		assert.NotNil(t, r)
	})
}
