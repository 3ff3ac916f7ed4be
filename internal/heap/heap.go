// Package heap provides the two bounded priority-queue shapes shared by
// the KD-tree best-bin-first searcher and the ball-tree branch-and-bound
// searcher: a capacity-k max-heap of scored results, and an unbounded
// min-heap of pending search nodes.
package heap

import "container/heap"

// ResultItem pairs an arbitrary payload with the distance it scored.
type ResultItem struct {
	Payload  interface{}
	Distance float64
}

// resultHeap is a max-heap by Distance: the root is the current worst
// (largest-distance) kept result, so it is cheap to evict when a better
// candidate arrives.
type resultHeap []ResultItem

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(ResultItem)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BoundedResults is a fixed-capacity max-heap of ResultItems: Offer keeps
// at most Cap items, always the Cap smallest-distance ones seen so far.
type BoundedResults struct {
	Cap int
	h   resultHeap
}

// NewBoundedResults returns a BoundedResults with the given capacity. cap
// must be positive.
func NewBoundedResults(cap int) *BoundedResults {
	return &BoundedResults{Cap: cap, h: make(resultHeap, 0, cap)}
}

// Offer inserts item, evicting the current worst (largest-distance) item
// if the heap would exceed its capacity.
func (b *BoundedResults) Offer(item ResultItem) {
	if b.Len() < b.Cap {
		heap.Push(&b.h, item)
		return
	}
	if b.Len() == 0 {
		return
	}
	if item.Distance < b.h[0].Distance {
		heap.Pop(&b.h)
		heap.Push(&b.h, item)
	}
}

// Len returns the number of items currently held.
func (b *BoundedResults) Len() int {
	return b.h.Len()
}

// Full reports whether the heap holds Cap items.
func (b *BoundedResults) Full() bool {
	return b.Len() >= b.Cap
}

// MaxDistance returns the current worst (largest) distance held, and
// false if the heap is empty.
func (b *BoundedResults) MaxDistance() (float64, bool) {
	if b.Len() == 0 {
		return 0, false
	}
	return b.h[0].Distance, true
}

// Drain returns the held items sorted ascending by Distance, consuming
// the heap.
func (b *BoundedResults) Drain() []ResultItem {
	out := make([]ResultItem, b.h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&b.h).(ResultItem)
	}
	return out
}

// NodeItem pairs an arbitrary search-frontier node with its traversal
// priority (lower explored first).
type NodeItem struct {
	Payload  interface{}
	Priority float64
}

// nodeHeap is a min-heap by Priority.
type nodeHeap []NodeItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].Priority < h[j].Priority }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(NodeItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Frontier is an unbounded min-heap of NodeItems, used to drive
// priority-ordered tree traversal.
type Frontier struct {
	h nodeHeap
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{h: make(nodeHeap, 0)}
}

// Push inserts item.
func (f *Frontier) Push(item NodeItem) {
	heap.Push(&f.h, item)
}

// Pop removes and returns the lowest-priority item. Panics if empty;
// callers must check Len first.
func (f *Frontier) Pop() NodeItem {
	return heap.Pop(&f.h).(NodeItem)
}

// Len returns the number of pending items.
func (f *Frontier) Len() int {
	return f.h.Len()
}
