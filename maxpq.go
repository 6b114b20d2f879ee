package lof

import (
	"container/heap"
	"math"
	"sort"
)

// BoundedMaxHeap is a fixed-capacity max-priority queue that retains the
// capacity lowest-priority items inserted so far. It is the working set of
// a k-NN search: the current maximum priority is an O(1) pruning bound for
// branch-and-bound traversal.
//
// Exact priority ties are ordered by item index, so the retained set is
// always the canonical k smallest (priority, index) pairs regardless of
// insertion order.
type BoundedMaxHeap struct {
	capacity int
	items    pqItems
}

// NewBoundedMaxHeap creates a queue retaining the capacity smallest-priority
// items. Returns ErrInvalidCapacity if capacity < 1.
func NewBoundedMaxHeap(capacity int) (*BoundedMaxHeap, error) {
	if capacity < 1 {
		return nil, errInvalidCapacity(capacity)
	}
	return &BoundedMaxHeap{
		capacity: capacity,
		items:    make(pqItems, 0, capacity),
	}, nil
}

// Len returns the number of items currently held.
func (q *BoundedMaxHeap) Len() int { return len(q.items) }

// Cap returns the queue's capacity.
func (q *BoundedMaxHeap) Cap() int { return q.capacity }

// MaxPriority returns the current maximum priority, or +Inf while the queue
// holds fewer than capacity items. The sentinel ensures pruning never
// rejects candidates before the working set is full.
func (q *BoundedMaxHeap) MaxPriority() float64 {
	if len(q.items) < q.capacity {
		return math.Inf(1)
	}
	return q.items[0].priority
}

// Insert offers an item to the queue. Below capacity it is always kept.
// At capacity it is kept only if (priority, index) orders strictly below
// the current maximum, in which case the maximum is evicted.
func (q *BoundedMaxHeap) Insert(index int, priority float64) {
	if len(q.items) < q.capacity {
		heap.Push(&q.items, pqItem{index: index, priority: priority})
		return
	}
	top := q.items[0]
	if priority < top.priority || (priority == top.priority && index < top.index) {
		q.items[0] = pqItem{index: index, priority: priority}
		heap.Fix(&q.items, 0)
	}
}

// ExtractAllSorted drains the queue, returning its contents as Neighbor
// values in ascending (Distance, Index) order. The queue is empty afterward.
func (q *BoundedMaxHeap) ExtractAllSorted() []Neighbor {
	result := make([]Neighbor, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		item := heap.Pop(&q.items).(pqItem)
		result[i] = Neighbor{Index: item.index, Distance: item.priority}
	}
	return result
}

type pqItem struct {
	index    int
	priority float64
}

// pqItems is a max-heap of pqItem: largest priority on top, with larger
// index winning exact priority ties so that the tied item evicted first
// is deterministic.
type pqItems []pqItem

func (h pqItems) Len() int { return len(h) }
func (h pqItems) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority // max-heap
	}
	return h[i].index > h[j].index
}
func (h pqItems) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *pqItems) Push(x interface{}) { *h = append(*h, x.(pqItem)) }
func (h *pqItems) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// sortNeighbors orders a neighbor slice ascending by (Distance, Index).
func sortNeighbors(neighbors []Neighbor) {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Index < neighbors[j].Index
	})
}
