package algo_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionFind(t *testing.T) {
	u := NewUnionFind(6)
	u.Union(0, 1)
	u.Union(2, 3)
	u.Union(1, 3)

	assert.Equal(t, u.Find(0), u.Find(3))
	assert.NotEqual(t, u.Find(0), u.Find(4))

	ids, count := u.Roots()
	assert.Equal(t, 3, count)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])
	assert.Equal(t, ids[0], ids[3])
	assert.NotEqual(t, ids[4], ids[5])
	// dense ids are assigned in first-seen order
	assert.Equal(t, 0, ids[0])
	assert.Equal(t, 1, ids[4])
	assert.Equal(t, 2, ids[5])
}

func TestHeapOrdering(t *testing.T) {
	h := NewHeap(func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 1, 3, 9, 2} {
		h.Push(v)
	}
	var got []int
	for h.Len() > 0 {
		got = append(got, h.Pop())
	}
	assert.Equal(t, []int{1, 1, 2, 3, 4, 5, 9}, got)
}

func TestHeapPeek(t *testing.T) {
	h := NewHeap(func(a, b int) bool { return a < b })
	h.Push(2)
	h.Push(1)
	assert.Equal(t, 1, h.Peek())
	assert.Equal(t, 2, h.Len())
}
