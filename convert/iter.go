package convert

import (
	"github.com/ferryrt/ferry/object"
	"github.com/ferryrt/ferry/seq"
)

// IterBinder lifts native iterators over E into host iterator
// objects. Build one with IterOf.
type IterBinder[E any] struct {
	elem Conv[E]
}

// IterOf returns a binder that converts iterated elements with elem.
func IterOf[E any](elem Conv[E]) IterBinder[E] {
	return IterBinder[E]{elem: elem}
}

// BindIter wraps a native iterator into a new owned host iterator.
// Elements convert lazily, one per host pull, under pc; native
// exhaustion is host exhaustion. Releasing the host iterator before
// the end drops the native iterator's hold on its handle.
func (b IterBinder[E]) BindIter(g *object.Guard, it *seq.Iter[E], pc Policy) *object.Object {
	rt := g.Runtime()
	next := func(g *object.Guard) *object.Object {
		p := it.Next()
		if p == nil {
			return nil
		}
		return b.elem.ToHost(g, *p, pc)
	}
	stop := func(g *object.Guard) {
		it.Stop()
	}
	return rt.NewFuncIter(g, next, stop)
}
