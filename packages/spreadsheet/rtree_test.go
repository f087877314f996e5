package spreadsheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTreeInsertAndLookupExact(t *testing.T) {
	tree := NewRTree[string](4)
	r1 := NewRange(Position{X: 0, Y: 0}, Position{X: 2, Y: 2})
	r2 := NewRange(Position{X: 5, Y: 5}, Position{X: 6, Y: 6})

	tree.Insert(r1, "a")
	tree.Insert(r2, "b")

	v, ok := tree.LookupExact(r1)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = tree.LookupExact(r2)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = tree.LookupExact(NewRange(Position{X: 9, Y: 9}, Position{X: 9, Y: 9}))
	assert.False(t, ok)
}

func TestRTreeRangeSearchFindsIntersecting(t *testing.T) {
	tree := NewRTree[int](4)
	for i := 0; i < 50; i++ {
		p := Position{X: uint16(i), Y: uint16(i)}
		tree.Insert(PointRange(p), i)
	}

	query := NewRange(Position{X: 10, Y: 10}, Position{X: 20, Y: 20})
	got := tree.RangeSearch(query)

	assert.Len(t, got, 11) // i = 10..20 inclusive lie on the diagonal within query
	for _, e := range got {
		assert.True(t, query.Intersects(e.Key))
	}
}

func TestRTreeRemove(t *testing.T) {
	tree := NewRTree[int](4)
	positions := make([]Range, 0, 30)
	for i := 0; i < 30; i++ {
		r := PointRange(Position{X: uint16(i), Y: 0})
		tree.Insert(r, i)
		positions = append(positions, r)
	}

	for i, r := range positions {
		if i%2 == 0 {
			v, ok := tree.Remove(r)
			require.True(t, ok)
			assert.Equal(t, i, v)
		}
	}

	for i, r := range positions {
		_, ok := tree.LookupExact(r)
		if i%2 == 0 {
			assert.False(t, ok, "entry %d should have been removed", i)
		} else {
			assert.True(t, ok, "entry %d should still be present", i)
		}
	}
}

func TestRTreeUpdateExact(t *testing.T) {
	tree := NewRTree[[]int](4)
	key := NewRange(Position{X: 1, Y: 1}, Position{X: 3, Y: 3})
	tree.Insert(key, []int{1, 2})

	ok := tree.UpdateExact(key, []int{1, 2, 3})
	require.True(t, ok)

	v, ok := tree.LookupExact(key)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestRTreeHandlesManyInsertsWithoutLosingEntries(t *testing.T) {
	tree := NewRTree[string](4)
	const n = 500
	for i := 0; i < n; i++ {
		p := Position{X: uint16(i % 100), Y: uint16(i / 100)}
		tree.Insert(PointRange(p), fmt.Sprintf("v%d", i))
	}
	for i := 0; i < n; i++ {
		p := Position{X: uint16(i % 100), Y: uint16(i / 100)}
		v, ok := tree.LookupExact(PointRange(p))
		require.True(t, ok, "missing entry at %v", p)
		assert.Equal(t, fmt.Sprintf("v%d", i), v)
	}
}
