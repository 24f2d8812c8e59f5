// Package seq bridges native Go slices into shared, iterable handles.
//
// A [Shared] handle keeps a slice alive across an unknown number of
// iterators via its own reference count, independent of any host
// runtime. [Iter] walks the elements forward-only, borrowing each one;
// exhausting an iterator drops its hold on the handle, so a container
// shared only with finished iterators can be reclaimed by its owner.
package seq

import "sync/atomic"

// Shared is a reference-counted handle over a native slice. The slice
// is mutated only by its original owner; iterators take read-only
// positions over it. Element pointers handed out by At and Iter point
// into the slice's backing array.
type Shared[E any] struct {
	elems []E
	refs  atomic.Int64
}

// Share wraps elems in a new handle with a reference count of 1.
func Share[E any](elems []E) *Shared[E] {
	h := &Shared[E]{elems: elems}
	h.refs.Store(1)
	return h
}

// Retain increments the reference count and returns the handle.
func (h *Shared[E]) Retain() *Shared[E] {
	if h.refs.Add(1) <= 1 {
		panic("seq: retain of a released handle")
	}
	return h
}

// Release decrements the reference count. Releasing past zero panics.
func (h *Shared[E]) Release() {
	if h.refs.Add(-1) < 0 {
		panic("seq: release of a released handle")
	}
}

// Refs reports the current reference count.
func (h *Shared[E]) Refs() int64 { return h.refs.Load() }

// Len returns the number of elements.
func (h *Shared[E]) Len() int { return len(h.elems) }

// At returns a pointer to the i-th element, valid as long as the
// handle is.
func (h *Shared[E]) At(i int) *E { return &h.elems[i] }

// Iter is a forward-only cursor over a shared handle. The zero value
// is exhausted.
type Iter[E any] struct {
	h   *Shared[E]
	pos int
}

// NewIter returns an iterator positioned at the first element. The
// iterator retains the handle until exhausted.
func NewIter[E any](h *Shared[E]) *Iter[E] {
	return &Iter[E]{h: h.Retain()}
}

// Next returns a borrowed pointer to the current element and advances.
// At the end it releases the iterator's hold on the handle and returns
// nil; exhaustion is terminal, and further calls return nil without
// touching the handle.
func (it *Iter[E]) Next() *E {
	if it.h == nil {
		return nil
	}
	if it.pos >= it.h.Len() {
		it.h.Release()
		it.h = nil
		return nil
	}
	e := it.h.At(it.pos)
	it.pos++
	return e
}

// Stop releases the iterator's hold on the handle without draining it.
// Safe to call on an exhausted or already stopped iterator.
func (it *Iter[E]) Stop() {
	if it.h != nil {
		it.h.Release()
		it.h = nil
	}
}
