package algo_utils

// this package provides some generic (in both senses of the word) algorithmic conveniences.

// UnionFind is a disjoint-set forest over 0..n-1 with path-halving finds.
// Unions reassign one root's parent to the other; no rank bookkeeping, which
// keeps the structure tiny and is fast enough at circuit sizes.
type UnionFind struct {
	parent []int32
}

func NewUnionFind(n int) *UnionFind {
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}
	return &UnionFind{parent: parent}
}

func (u *UnionFind) Find(x int) int {
	p := int32(x)
	for u.parent[p] != p {
		u.parent[p] = u.parent[u.parent[p]] // path halving
		p = u.parent[p]
	}
	return int(p)
}

func (u *UnionFind) Union(x, y int) {
	rx, ry := u.Find(x), u.Find(y)
	if rx != ry {
		u.parent[ry] = int32(rx)
	}
}

// Roots returns, for each element, a component id densely remapped to
// 0..count-1 in first-seen order, along with the component count.
func (u *UnionFind) Roots() ([]int, int) {
	dense := make(map[int]int)
	out := make([]int, len(u.parent))
	for i := range u.parent {
		r := u.Find(i)
		id, ok := dense[r]
		if !ok {
			id = len(dense)
			dense[r] = id
		}
		out[i] = id
	}
	return out, len(dense)
}

// Heap is a binary min-heap ordered by less.
type Heap[T any] struct {
	data []T
	less func(a, b T) bool
}

func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

func (h *Heap[T]) Len() int { return len(h.data) }

func (h *Heap[T]) Push(v T) {
	h.data = append(h.data, v)
	i := len(h.data) - 1
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(h.data[i], h.data[p]) {
			break
		}
		h.data[i], h.data[p] = h.data[p], h.data[i]
		i = p
	}
}

func (h *Heap[T]) Peek() T { return h.data[0] }

func (h *Heap[T]) Pop() T {
	top := h.data[0]
	last := len(h.data) - 1
	h.data[0] = h.data[last]
	var zero T
	h.data[last] = zero
	h.data = h.data[:last]

	i := 0
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < len(h.data) && h.less(h.data[l], h.data[smallest]) {
			smallest = l
		}
		if r < len(h.data) && h.less(h.data[r], h.data[smallest]) {
			smallest = r
		}
		if smallest == i {
			return top
		}
		h.data[i], h.data[smallest] = h.data[smallest], h.data[i]
		i = smallest
	}
}
