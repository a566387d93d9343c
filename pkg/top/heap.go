package top

import (
	"github.com/emirpasic/gods/trees/binaryheap"
)

// Heap keeps the limit entries with the largest Used seen so far.
type Heap struct {
	limit int
	seq   uint64
	heap  *binaryheap.Heap
}

type heapItem struct {
	entry Entry
	seq   uint64
}

// NewHeap returns a heap bounded to limit entries.
func NewHeap(limit int) *Heap {
	return &Heap{
		limit: limit,
		heap: binaryheap.NewWith(func(a, b interface{}) int {
			x, y := a.(heapItem), b.(heapItem)
			switch {
			case x.entry.Used < y.entry.Used:
				return -1
			case x.entry.Used > y.entry.Used:
				return 1
			case x.seq > y.seq:
				// later arrivals are evicted first among equals
				return -1
			case x.seq < y.seq:
				return 1
			}
			return 0
		}),
	}
}

// Push adds e, evicting the smallest entry when over the limit.
func (h *Heap) Push(e Entry) {
	h.seq++
	h.heap.Push(heapItem{entry: e, seq: h.seq})
	if h.heap.Size() > h.limit {
		h.heap.Pop()
	}
}

// Len is the number of entries held.
func (h *Heap) Len() int {
	return h.heap.Size()
}

// Drain empties the heap and returns its entries, largest Used first.
func (h *Heap) Drain() []Entry {
	out := make([]Entry, h.heap.Size())
	for i := len(out) - 1; i >= 0; i-- {
		v, _ := h.heap.Pop()
		out[i] = v.(heapItem).entry
	}
	return out
}
