package convert

import "github.com/ferryrt/ferry/object"

// SliceOf builds the pair for a native slice over elem. ToHost never
// returns a partial list: any element failure releases everything
// built so far. FromHost is best effort: a mid-stream failure leaves
// the destination holding the elements converted before it.
func SliceOf[E any](elem Conv[E]) Conv[[]E] {
	return Conv[[]E]{
		from: func(g *object.Guard, v *object.Object, dst *[]E) bool {
			*dst = nil
			return fillFromIterable(g, v, elem, dst)
		},
		into: func(g *object.Guard, v []E, pc Policy) *object.Object {
			rt := g.Runtime()
			l := rt.NewList(g)
			epc := pc.Get(0)
			for _, e := range v {
				o := elem.ToHost(g, e, epc)
				if o == nil {
					l.Release(g)
					return nil
				}
				rt.ListAppend(g, l, o)
				o.Release(g)
			}
			return pc.Apply(g, l)
		},
	}
}

// fillFromIterable appends converted elements of any host iterable
// to *dst, stopping at the first failure.
func fillFromIterable[E any](g *object.Guard, v *object.Object, elem Conv[E], dst *[]E) bool {
	rt := g.Runtime()
	it, ok := rt.Iter(g, v)
	if !ok {
		return false
	}
	defer it.Release(g)
	for {
		el := rt.Next(g, it)
		if el == nil {
			return !rt.Failed(g)
		}
		var e E
		ok := elem.FromHost(g, el, &e)
		el.Release(g)
		if !ok {
			return false
		}
		*dst = append(*dst, e)
	}
}

// ArrayOf builds a fixed-length sequence pair: exactly n elements in
// both directions, length mismatch is a value error.
func ArrayOf[E any](n int, elem Conv[E]) Conv[[]E] {
	inner := SliceOf(elem)
	return Conv[[]E]{
		from: func(g *object.Guard, v *object.Object, dst *[]E) bool {
			rt := g.Runtime()
			m, ok := rt.Len(g, v)
			if !ok {
				return false
			}
			if m != n {
				return rt.Fail(g, object.ErrValue, "expected a size of %d, got %d", n, m)
			}
			return inner.from(g, v, dst)
		},
		into: func(g *object.Guard, v []E, pc Policy) *object.Object {
			if len(v) != n {
				g.Runtime().Fail(g, object.ErrValue, "expected a size of %d, got %d", n, len(v))
				return nil
			}
			return inner.into(g, v, pc)
		},
	}
}

// MapOf builds the pair between a native map and a host dict. ToHost
// converts keys under pc.Get(0) and values under pc.Get(1). FromHost
// requires a dict and fills best effort.
func MapOf[K comparable, V any](key Conv[K], val Conv[V]) Conv[map[K]V] {
	return Conv[map[K]V]{
		from: func(g *object.Guard, v *object.Object, dst *map[K]V) bool {
			rt := g.Runtime()
			if v.Kind() != object.KindDict {
				*dst = nil
				return rt.Fail(g, object.ErrType, "expecting dict")
			}
			n, _ := rt.Len(g, v)
			*dst = make(map[K]V, n)
			items, ok := rt.Items(g, v)
			if !ok {
				return false
			}
			defer items.Release(g)
			for i := 0; i < n; i++ {
				pair, _ := rt.SeqAt(g, items, i)
				ko, _ := rt.SeqAt(g, pair, 0)
				vo, _ := rt.SeqAt(g, pair, 1)
				var k K
				if !key.FromHost(g, ko, &k) {
					return false
				}
				var vv V
				if !val.FromHost(g, vo, &vv) {
					return false
				}
				(*dst)[k] = vv
			}
			return true
		},
		into: func(g *object.Guard, v map[K]V, pc Policy) *object.Object {
			rt := g.Runtime()
			d := rt.NewDict(g)
			kpc, vpc := pc.Get(0), pc.Get(1)
			for k, vv := range v {
				ko := key.ToHost(g, k, kpc)
				if ko == nil {
					d.Release(g)
					return nil
				}
				vo := val.ToHost(g, vv, vpc)
				if vo == nil {
					ko.Release(g)
					d.Release(g)
					return nil
				}
				ok := rt.DictSet(g, d, ko, vo)
				ko.Release(g)
				vo.Release(g)
				if !ok {
					d.Release(g)
					return nil
				}
			}
			return pc.Apply(g, d)
		},
	}
}

// SetOf builds the pair between a native membership map and a host
// set. FromHost accepts any iterable and fills best effort; ToHost
// fails if a converted element is unhashable.
func SetOf[E comparable](elem Conv[E]) Conv[map[E]struct{}] {
	return Conv[map[E]struct{}]{
		from: func(g *object.Guard, v *object.Object, dst *map[E]struct{}) bool {
			*dst = make(map[E]struct{})
			var buf []E
			ok := fillFromIterable(g, v, elem, &buf)
			for _, e := range buf {
				(*dst)[e] = struct{}{}
			}
			return ok
		},
		into: func(g *object.Guard, v map[E]struct{}, pc Policy) *object.Object {
			rt := g.Runtime()
			s := rt.NewSet(g)
			epc := pc.Get(0)
			for e := range v {
				o := elem.ToHost(g, e, epc)
				if o == nil {
					s.Release(g)
					return nil
				}
				ok := rt.SetAdd(g, s, o)
				o.Release(g)
				if !ok {
					s.Release(g)
					return nil
				}
			}
			return pc.Apply(g, s)
		},
	}
}

// Pair is the native shape of a two-element host sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf builds the pair between Pair[A, B] and a host 2-tuple.
// FromHost accepts any sequence of length 2.
func PairOf[A, B any](a Conv[A], b Conv[B]) Conv[Pair[A, B]] {
	return Conv[Pair[A, B]]{
		from: func(g *object.Guard, v *object.Object, dst *Pair[A, B]) bool {
			rt := g.Runtime()
			n, ok := rt.SeqLen(g, v)
			if !ok {
				return rt.Fail(g, object.ErrType, "expecting a sequence with len==2")
			}
			if n != 2 {
				return rt.Fail(g, object.ErrValue, "expected a sequence with len==2, got %d", n)
			}
			ao, _ := rt.SeqAt(g, v, 0)
			bo, _ := rt.SeqAt(g, v, 1)
			return a.FromHost(g, ao, &dst.First) && b.FromHost(g, bo, &dst.Second)
		},
		into: func(g *object.Guard, v Pair[A, B], pc Policy) *object.Object {
			rt := g.Runtime()
			ao := a.ToHost(g, v.First, pc.Get(0))
			if ao == nil {
				return nil
			}
			bo := b.ToHost(g, v.Second, pc.Get(1))
			if bo == nil {
				ao.Release(g)
				return nil
			}
			t := rt.NewTuple(g, ao, bo)
			ao.Release(g)
			bo.Release(g)
			return pc.Apply(g, t)
		},
	}
}

// Field describes one position of a struct-shaped host tuple: which
// struct field it lives in and how it converts. Build fields with At.
type Field[S any] struct {
	from func(g *object.Guard, v *object.Object, dst *S) bool
	into func(g *object.Guard, v *S, pc Policy) *object.Object
}

// At binds tuple position to a struct field through its selector.
func At[S, E any](conv Conv[E], sel func(*S) *E) Field[S] {
	return Field[S]{
		from: func(g *object.Guard, v *object.Object, dst *S) bool {
			return conv.FromHost(g, v, sel(dst))
		},
		into: func(g *object.Guard, v *S, pc Policy) *object.Object {
			return conv.ToHost(g, *sel(v), pc)
		},
	}
}

// TupleOf builds the pair between a struct and a host tuple of
// exactly len(fields) positions, converted in declaration order.
func TupleOf[S any](fields ...Field[S]) Conv[S] {
	return Conv[S]{
		from: func(g *object.Guard, v *object.Object, dst *S) bool {
			rt := g.Runtime()
			if v.Kind() != object.KindTuple {
				return rt.Fail(g, object.ErrType, "expecting tuple")
			}
			n, _ := rt.SeqLen(g, v)
			if n != len(fields) {
				return rt.Fail(g, object.ErrValue,
					"expected a tuple with len==%d, got %d", len(fields), n)
			}
			for i, f := range fields {
				el, _ := rt.SeqAt(g, v, i)
				if !f.from(g, el, dst) {
					return false
				}
			}
			return true
		},
		into: func(g *object.Guard, v S, pc Policy) *object.Object {
			rt := g.Runtime()
			elems := make([]*object.Object, 0, len(fields))
			for i, f := range fields {
				o := f.into(g, &v, pc.Get(i))
				if o == nil {
					for _, b := range elems {
						b.Release(g)
					}
					return nil
				}
				elems = append(elems, o)
			}
			t := rt.NewTuple(g, elems...)
			for _, b := range elems {
				b.Release(g)
			}
			return pc.Apply(g, t)
		},
	}
}

// Optional is the native shape of a maybe-absent value.
type Optional[E any] struct {
	Value E
	Set   bool
}

// OptionalOf builds the pair between Optional[E] and a host value
// where None means absent. A failed payload conversion leaves the
// destination empty, never half initialized.
func OptionalOf[E any](payload Conv[E]) Conv[Optional[E]] {
	return Conv[Optional[E]]{
		from: func(g *object.Guard, v *object.Object, dst *Optional[E]) bool {
			*dst = Optional[E]{}
			if v.IsNone() {
				return true
			}
			var e E
			if !payload.FromHost(g, v, &e) {
				return false
			}
			*dst = Optional[E]{Value: e, Set: true}
			return true
		},
		into: func(g *object.Guard, v Optional[E], pc Policy) *object.Object {
			if !v.Set {
				return g.Runtime().None()
			}
			return payload.ToHost(g, v.Value, pc)
		},
	}
}

// PtrOf builds the owning-pointer pair: None maps to nil, anything
// else allocates and fills. FromHost leaves the destination nil on
// failure.
func PtrOf[E any](payload Conv[E]) Conv[*E] {
	return Conv[*E]{
		from: func(g *object.Guard, v *object.Object, dst **E) bool {
			*dst = nil
			if v.IsNone() {
				return true
			}
			e := new(E)
			if !payload.FromHost(g, v, e) {
				return false
			}
			*dst = e
			return true
		},
		into: func(g *object.Guard, v *E, pc Policy) *object.Object {
			if v == nil {
				return g.Runtime().None()
			}
			return payload.ToHost(g, *v, pc)
		},
	}
}
