package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UniformRefinement(t *testing.T) {
	// GIVEN a mesh initialized to level 3
	m := New(0, 0, 1, []string{"f"}, 3)

	// THEN the leaves tile the domain as an 8x8 grid
	assert.Equal(t, 64, m.NumLeaves())
	m.ForEachLeaf(func(c *Cell) {
		assert.Equal(t, 3, c.Level())
		assert.InDelta(t, 1.0/8, c.Delta(), 1e-15)
	})
}

func TestLocate_FindsContainingLeaf(t *testing.T) {
	m := New(-1, 0, 2, []string{"f"}, 2)

	c := m.Locate(-0.9, 0.1)
	require.NotNil(t, c)
	assert.LessOrEqual(t, c.X()-c.Delta()/2, -0.9)
	assert.GreaterOrEqual(t, c.X()+c.Delta()/2, -0.9)

	assert.Nil(t, m.Locate(-1.5, 0.5), "point left of the domain")
	assert.Nil(t, m.Locate(0, 2.5), "point above the domain")
}

func TestRefine_PredicateBand(t *testing.T) {
	// GIVEN a coarse mesh
	m := New(0, 0, 1, []string{"f"}, 2)

	// WHEN refining a band around the center up to level 4
	n := m.Refine(func(x, y, delta float64, level int) bool {
		r2 := (x-0.5)*(x-0.5) + (y-0.5)*(y-0.5)
		return r2 < 0.1 && level < 4
	})
	require.Greater(t, n, 0)

	// THEN cells near the center reached level 4 and the predicate holds
	// nowhere anymore
	c := m.Locate(0.5, 0.5)
	assert.Equal(t, 4, c.Level())
	assert.Zero(t, m.Refine(func(x, y, delta float64, level int) bool {
		r2 := (x-0.5)*(x-0.5) + (y-0.5)*(y-0.5)
		return r2 < 0.1 && level < 4
	}))
}

func TestRefine_ChildrenInheritValues(t *testing.T) {
	m := New(0, 0, 1, []string{"f"}, 1)
	i, err := m.FieldIndex("f")
	require.NoError(t, err)
	m.ForEachLeaf(func(c *Cell) { c.SetVal(i, 7.5) })

	m.Refine(func(x, y, delta float64, level int) bool { return level < 2 })

	m.ForEachLeaf(func(c *Cell) {
		assert.Equal(t, 7.5, c.Val(i))
	})
}

func TestFieldIndex_UnknownField(t *testing.T) {
	m := New(0, 0, 1, []string{"f"}, 1)
	_, err := m.FieldIndex("nope")
	assert.Error(t, err)
}
