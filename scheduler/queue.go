package scheduler

import (
	"container/heap"

	"github.com/pthm-cable/gridbot/grid"
)

// itemHeap implements heap.Interface ordered by priority, then configuration order.
type itemHeap []Item

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].Seq < h[j].Seq
}
func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(Item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Queue holds pending items, lowest priority first.
// Priorities are never edited in place; Rebuild drains and refills the heap.
type Queue struct {
	h itemHeap
}

// NewQueue ranks specs from robot. Seq follows the order of specs.
func NewQueue(specs []ItemSpec, robot grid.Cell) *Queue {
	q := &Queue{h: make(itemHeap, 0, len(specs))}
	for i, spec := range specs {
		q.h = append(q.h, NewItem(spec, robot, i))
	}
	heap.Init(&q.h)
	return q
}

// Len returns the number of pending items.
func (q *Queue) Len() int { return q.h.Len() }

// Pop removes and returns the lowest-priority item.
func (q *Queue) Pop() (Item, bool) {
	if q.h.Len() == 0 {
		return Item{}, false
	}
	return heap.Pop(&q.h).(Item), true
}

// Push adds an item.
func (q *Queue) Push(it Item) {
	heap.Push(&q.h, it)
}

// Rebuild drains the queue and refills it with every item re-ranked from robot.
func (q *Queue) Rebuild(robot grid.Cell) {
	next := make(itemHeap, 0, q.h.Len())
	for q.h.Len() > 0 {
		it := heap.Pop(&q.h).(Item)
		heap.Push(&next, it.Reprioritize(robot))
	}
	q.h = next
}

// Snapshot returns the pending items in pop order without modifying the queue.
func (q *Queue) Snapshot() []Item {
	tmp := make(itemHeap, len(q.h))
	copy(tmp, q.h)
	out := make([]Item, 0, len(tmp))
	for tmp.Len() > 0 {
		out = append(out, heap.Pop(&tmp).(Item))
	}
	return out
}
