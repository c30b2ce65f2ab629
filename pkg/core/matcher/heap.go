package matcher

import "container/heap"

// frontier is a max-heap of partial search states ordered by their
// admissible score bound, so the most promising state is always at the
// top. Ties fall back to the insertion sequence number, keeping pop
// order fully deterministic.
type frontier []*state

// Len returns the size of the heap.
func (f frontier) Len() int { return len(f) }

// Less gives higher priority to the larger bound; equal bounds are
// served in insertion order.
func (f frontier) Less(i, j int) bool {
	if f[i].bound != f[j].bound {
		return f[i].bound > f[j].bound
	}
	return f[i].seq < f[j].seq
}

// Swap swaps the elements at indices i and j.
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

// Push adds an element to the heap.
func (f *frontier) Push(x any) { *f = append(*f, x.(*state)) }

// Pop removes and returns the element with the highest priority.
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*f = old[0 : n-1]
	return x
}

// newFrontier creates an initialized frontier with the given capacity.
func newFrontier(capacity int) *frontier {
	f := make(frontier, 0, capacity)
	heap.Init(&f)
	return &f
}
