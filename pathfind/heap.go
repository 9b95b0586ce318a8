package pathfind

import "github.com/pthm-cable/gridbot/grid"

// node is one entry in the search arena.
type node struct {
	cell   grid.Cell
	g      int // steps from start
	h      int // Manhattan to target
	f      int // g + h (priority)
	parent int // arena index, -1 for the root
}

// frontier implements heap.Interface over arena indices.
// Ordering is f, then h, then arena index (insertion order).
type frontier struct {
	nodes *[]node
	ids   []int
}

func (q frontier) Len() int { return len(q.ids) }

func (q frontier) Less(i, j int) bool {
	a, b := &(*q.nodes)[q.ids[i]], &(*q.nodes)[q.ids[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return q.ids[i] < q.ids[j]
}

func (q frontier) Swap(i, j int) { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }

func (q *frontier) Push(x any) {
	q.ids = append(q.ids, x.(int))
}

func (q *frontier) Pop() any {
	old := q.ids
	n := len(old)
	id := old[n-1]
	q.ids = old[:n-1]
	return id
}
