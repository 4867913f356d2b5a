package corobus

import "golang.org/x/exp/constraints"

// ringQueue is a growable ring-buffer FIFO of fixed-width items, grown by
// doubling. It backs each channel's buffered item storage.
//
// The shape (mask-indexed slice, read/write cursors) follows the ring
// buffer used by go-catrate for its per-category sliding-window event
// log; generalized here over constraints.Integer since a bus channel's
// item type (uint32) is just one instantiation among several the
// teacher's ring buffer supports.
type ringQueue[T constraints.Integer] struct {
	s    []T
	r, w uint
}

func newRingQueue[T constraints.Integer](capacityHint int) *ringQueue[T] {
	size := 8
	for size < capacityHint {
		size <<= 1
	}
	return &ringQueue[T]{s: make([]T, size)}
}

func (q *ringQueue[T]) mask(v uint) uint {
	return v & (uint(len(q.s)) - 1)
}

// Len returns the number of items currently queued.
func (q *ringQueue[T]) Len() int {
	return int(q.w - q.r)
}

// Push appends one item, growing the backing slice if full.
func (q *ringQueue[T]) Push(v T) {
	if q.Len() == len(q.s) {
		q.grow()
	}
	q.s[q.mask(q.w)] = v
	q.w++
}

// PushMany appends the first min(len(vals), max) items, returning the
// count actually pushed. The backing slice is doubled as many times as
// needed to hold them.
func (q *ringQueue[T]) PushMany(vals []T, max int) int {
	n := len(vals)
	if n > max {
		n = max
	}
	for q.Len()+n > len(q.s) {
		q.grow()
	}
	for i := 0; i < n; i++ {
		q.s[q.mask(q.w)] = vals[i]
		q.w++
	}
	return n
}

// Pop removes and returns the oldest item; callers must check Len() > 0.
func (q *ringQueue[T]) Pop() T {
	v := q.s[q.mask(q.r)]
	q.r++
	return v
}

// PopMany removes up to len(dst) items, returning the count actually
// popped (never more than Len()).
func (q *ringQueue[T]) PopMany(dst []T) int {
	n := len(dst)
	if l := q.Len(); n > l {
		n = l
	}
	for i := 0; i < n; i++ {
		dst[i] = q.s[q.mask(q.r)]
		q.r++
	}
	return n
}

func (q *ringQueue[T]) grow() {
	newSize := len(q.s) * 2
	if newSize == 0 {
		newSize = 8
	}
	ns := make([]T, newSize)
	n := q.Len()
	for i := 0; i < n; i++ {
		ns[i] = q.s[q.mask(q.r+uint(i))]
	}
	q.s = ns
	q.r = 0
	q.w = uint(n)
}
