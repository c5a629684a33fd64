// Package container holds small generic data structures; its priority
// queue backs the lanelet route search.
package container

import "container/heap"

// item is a single entry of the priority queue.
type item[T any] struct {
	Value    T
	Priority float64
	// index is maintained by container/heap; callers never touch it.
	index int
}

// heapSlice implements heap.Interface over a slice of *item[T].
type heapSlice[T any] []*item[T]

func (h heapSlice[T]) Len() int { return len(h) }

// Less orders by ascending priority so Pop yields the smallest priority first.
func (h heapSlice[T]) Less(i, j int) bool { return h[i].Priority < h[j].Priority }

func (h heapSlice[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *heapSlice[T]) Push(x any) {
	it := x.(*item[T])
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *heapSlice[T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// PriorityQueue is a min-priority queue over arbitrary values, used by
// lanelet.route for Dijkstra search over the lanelet graph.
type PriorityQueue[T any] struct {
	heap heapSlice[T]
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{heap: make(heapSlice[T], 0)}
}

// Len reports the number of queued elements.
func (q *PriorityQueue[T]) Len() int { return len(q.heap) }

// Push inserts value with the given priority, maintaining the heap property.
func (q *PriorityQueue[T]) Push(value T, priority float64) {
	heap.Push(&q.heap, &item[T]{Value: value, Priority: priority})
}

// Pop removes and returns the element with the smallest priority.
func (q *PriorityQueue[T]) Pop() (value T, priority float64) {
	it := heap.Pop(&q.heap).(*item[T])
	return it.Value, it.Priority
}
