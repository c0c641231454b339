package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOrdering(t *testing.T) {
	t.Run("equal", func(t *testing.T) {
		assert.True(t, V(1, 2).Equal(V(1, 2)))
		assert.False(t, V(1, 2).Equal(V(1, 3)))
	})

	t.Run("less_equal", func(t *testing.T) {
		assert.True(t, V(0, 0).LessEqual(V(1, 1)))
		assert.True(t, V(1, 1).LessEqual(V(1, 1)))
		assert.False(t, V(1, 2).LessEqual(V(2, 1)))
	})

	t.Run("less_than", func(t *testing.T) {
		assert.True(t, V(0, 0).LessThan(V(0, 1)))
		assert.False(t, V(0, 0).LessThan(V(0, 0)))
	})

	t.Run("join_meet", func(t *testing.T) {
		assert.True(t, V(1, 0).Join(V(0, 1)).Equal(V(1, 1)))
		assert.True(t, V(1, 0).Meet(V(0, 1)).Equal(V(0, 0)))
	})

	t.Run("dimension_mismatch_panics", func(t *testing.T) {
		assert.Panics(t, func() { V(1).LessEqual(V(1, 1)) })
		assert.Panics(t, func() { V(1).Join(V(1, 1)) })
	})
}

func TestVersionScope(t *testing.T) {
	v := V(3)

	extended := v.Extend()
	require.Equal(t, 2, extended.Dim())
	assert.Equal(t, int64(3), extended.At(0))
	assert.Equal(t, int64(0), extended.At(1))

	stepped := extended.ApplyStep(5)
	assert.Equal(t, int64(5), stepped.At(1))

	truncated := stepped.Truncate()
	assert.True(t, truncated.Equal(v))
}

func TestVersionTruncateZeroDimPanics(t *testing.T) {
	assert.Panics(t, func() { V().Truncate() })
	assert.Panics(t, func() { V().ApplyStep(1) })
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "[0,2,1]", V(0, 2, 1).String())
	assert.Equal(t, "[]", V().String())
}
