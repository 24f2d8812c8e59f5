package object

import (
	"bytes"
	"cmp"
	"math/big"
	"strings"
	"unicode/utf8"
)

// Len returns the length of a sized object. Unsized kinds fail with
// a type error and return -1.
func (rt *Runtime) Len(g *Guard, o *Object) (int, bool) {
	rt.check(g)
	o.alive()
	switch o.kind {
	case KindStr:
		return utf8.RuneCountInString(o.s), true
	case KindBytes:
		return len(o.b), true
	case KindList, KindTuple:
		return len(o.seq), true
	case KindDict, KindSet:
		return o.tab.len(), true
	}
	rt.Fail(g, ErrType, "object of type '%s' has no len()", o.TypeName())
	return -1, false
}

// Truth reports the object's truthiness. It is total: empty and zero
// values are false, everything else true.
func (rt *Runtime) Truth(g *Guard, o *Object) bool {
	rt.check(g)
	o.alive()
	switch o.kind {
	case KindNone:
		return false
	case KindBool, KindInt:
		return o.i != 0 || o.big != nil
	case KindFloat:
		return o.f != 0
	case KindStr:
		return o.s != ""
	case KindBytes:
		return len(o.b) > 0
	case KindList, KindTuple:
		return len(o.seq) > 0
	case KindDict, KindSet:
		return o.tab.len() > 0
	}
	return true
}

// Compare orders two objects three-way: -1, 0, or 1. Ints and floats
// compare across kinds; str, bytes, bool, and sequences compare
// within their kind. Anything else fails with a type error.
func (rt *Runtime) Compare(g *Guard, a, b *Object) (int, bool) {
	rt.check(g)
	a.alive()
	b.alive()
	if a == b {
		return 0, true
	}
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return compareInt(a, b), true
	case isNumeric(a) && isNumeric(b):
		af, bf := a.floatApprox(), b.floatApprox()
		if af != af || bf != bf {
			rt.Fail(g, ErrValue, "cannot order NaN values")
			return 0, false
		}
		return cmp.Compare(af, bf), true
	case a.kind == KindBool && b.kind == KindBool:
		return cmp.Compare(a.i, b.i), true
	case a.kind == KindStr && b.kind == KindStr:
		return strings.Compare(a.s, b.s), true
	case a.kind == KindBytes && b.kind == KindBytes:
		return bytes.Compare(a.b, b.b), true
	case a.kind == b.kind && (a.kind == KindList || a.kind == KindTuple):
		for i := 0; i < len(a.seq) && i < len(b.seq); i++ {
			c, ok := rt.Compare(g, a.seq[i], b.seq[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return cmp.Compare(len(a.seq), len(b.seq)), true
	}
	rt.Fail(g, ErrType, "cannot compare '%s' and '%s'", a.TypeName(), b.TypeName())
	return 0, false
}

func isNumeric(o *Object) bool {
	return o.kind == KindInt || o.kind == KindFloat
}

func (o *Object) floatApprox() float64 {
	if o.kind == KindFloat {
		return o.f
	}
	if o.big != nil {
		f, _ := new(big.Float).SetInt(o.big).Float64()
		return f
	}
	return float64(o.i)
}

func compareInt(a, b *Object) int {
	if a.big == nil && b.big == nil {
		return cmp.Compare(a.i, b.i)
	}
	return a.bigValue().Cmp(b.bigValue())
}

// Call invokes a func object with an argument tuple (nil means no
// arguments) and returns a new owned reference to the result. The
// callee's arity is enforced before the call.
func (rt *Runtime) Call(g *Guard, f *Object, args *Object) (*Object, bool) {
	rt.check(g)
	f.alive()
	if f.kind != KindFunc {
		rt.Fail(g, ErrType, "'%s' object is not callable", f.TypeName())
		return nil, false
	}
	argv := args
	if argv == nil {
		argv = rt.NewTuple(g)
	} else {
		argv.alive()
		if argv.kind != KindTuple {
			rt.Fail(g, ErrType, "argument list must be a tuple, not '%s'", argv.TypeName())
			return nil, false
		}
		argv.Retain(g)
	}
	defer argv.Release(g)

	if n := len(argv.seq); f.fn.arity >= 0 && n != f.fn.arity {
		rt.Fail(g, ErrType, "%s() takes %d argument(s) (%d given)", f.fn.name, f.fn.arity, n)
		return nil, false
	}
	res := f.fn.call(g, argv)
	if res == nil {
		if !rt.Failed(g) {
			rt.Fail(g, ErrRuntime, "%s() returned no value and no error", f.fn.name)
		}
		return nil, false
	}
	if rt.Failed(g) {
		// A result never coexists with a pending error.
		res.Release(g)
		return nil, false
	}
	return res, true
}

// CallableArity returns a func object's declared arity (-1 for
// variadic). Non-callables fail with "callable expected".
func (rt *Runtime) CallableArity(g *Guard, f *Object) (int, bool) {
	rt.check(g)
	f.alive()
	if f.kind != KindFunc {
		rt.Fail(g, ErrType, "callable expected")
		return 0, false
	}
	return f.fn.arity, true
}

// FuncName returns a func object's name, or "" for other kinds.
func (rt *Runtime) FuncName(g *Guard, f *Object) string {
	rt.check(g)
	f.alive()
	if f.kind != KindFunc {
		return ""
	}
	return f.fn.name
}

// Iter returns a new owned iterator over o. Iterators iterate to
// themselves. Non-iterable kinds fail with a type error.
func (rt *Runtime) Iter(g *Guard, o *Object) (*Object, bool) {
	rt.check(g)
	o.alive()
	switch o.kind {
	case KindIter:
		return o.Retain(g), true
	case KindList, KindTuple, KindDict, KindSet, KindStr, KindBytes:
		return rt.newBuiltinIter(g, o), true
	}
	rt.Fail(g, ErrType, "'%s' object is not iterable", o.TypeName())
	return nil, false
}

func (rt *Runtime) newBuiltinIter(g *Guard, src *Object) *Object {
	src.Retain(g)
	pos := 0
	next := func(g *Guard) *Object {
		switch src.kind {
		case KindList, KindTuple:
			if pos >= len(src.seq) {
				return nil
			}
			el := src.seq[pos]
			pos++
			return el.Retain(g)
		case KindDict, KindSet:
			if pos >= len(src.tab.entries) {
				return nil
			}
			e := src.tab.entries[pos]
			pos++
			return e.key.Retain(g)
		case KindStr:
			if pos >= len(src.s) {
				return nil
			}
			r, size := utf8.DecodeRuneInString(src.s[pos:])
			pos += size
			return rt.NewStr(g, string(r))
		default: // KindBytes
			if pos >= len(src.b) {
				return nil
			}
			v := src.b[pos]
			pos++
			return rt.NewInt(g, int64(v))
		}
	}
	stop := func(g *Guard) {
		src.Release(g)
	}
	return rt.NewFuncIter(g, next, stop)
}

// Next advances an iterator and returns a new owned reference to the
// element, or nil. A nil result with no pending error means the
// iterator is exhausted; exhaustion is terminal and releases the
// iterator's hold on its source.
func (rt *Runtime) Next(g *Guard, it *Object) *Object {
	rt.check(g)
	it.alive()
	if it.kind != KindIter {
		rt.Fail(g, ErrType, "'%s' object is not an iterator", it.TypeName())
		return nil
	}
	if it.it.next == nil {
		return nil
	}
	res := it.it.next(g)
	if res == nil && !rt.Failed(g) {
		it.it.next = nil
		if stop := it.it.stop; stop != nil {
			it.it.stop = nil
			stop(g)
		}
	}
	return res
}

// Items returns a new owned list of (key, value) tuples in dict
// insertion order.
func (rt *Runtime) Items(g *Guard, d *Object) (*Object, bool) {
	rt.check(g)
	d.alive()
	if d.kind != KindDict {
		rt.Fail(g, ErrType, "'%s' object has no items()", d.TypeName())
		return nil, false
	}
	list := rt.NewList(g)
	for _, e := range d.tab.entries {
		pair := rt.NewTuple(g, e.key, e.val)
		rt.ListAppend(g, list, pair)
		pair.Release(g)
	}
	return list, true
}

// SeqLen returns the element count of a list or tuple.
func (rt *Runtime) SeqLen(g *Guard, o *Object) (int, bool) {
	rt.check(g)
	o.alive()
	if o.kind != KindList && o.kind != KindTuple {
		return 0, false
	}
	return len(o.seq), true
}

// SeqAt returns the i-th element of a list or tuple, borrowed.
func (rt *Runtime) SeqAt(g *Guard, o *Object, i int) (*Object, bool) {
	rt.check(g)
	o.alive()
	if o.kind != KindList && o.kind != KindTuple {
		rt.Fail(g, ErrType, "'%s' object is not subscriptable", o.TypeName())
		return nil, false
	}
	if i < 0 || i >= len(o.seq) {
		rt.Fail(g, ErrIndex, "index out of range")
		return nil, false
	}
	return o.seq[i], true
}

// ListAppend appends x to a list. x is borrowed; the list retains its
// own reference.
func (rt *Runtime) ListAppend(g *Guard, l, x *Object) bool {
	rt.check(g)
	l.alive()
	x.alive()
	if l.kind != KindList {
		return rt.Fail(g, ErrType, "'%s' object has no append()", l.TypeName())
	}
	l.seq = append(l.seq, x.Retain(g))
	return true
}

// ListSetItem replaces the i-th element of a list. x is borrowed.
func (rt *Runtime) ListSetItem(g *Guard, l *Object, i int, x *Object) bool {
	rt.check(g)
	l.alive()
	x.alive()
	if l.kind != KindList {
		return rt.Fail(g, ErrType, "'%s' object does not support item assignment", l.TypeName())
	}
	if i < 0 || i >= len(l.seq) {
		return rt.Fail(g, ErrIndex, "index out of range")
	}
	old := l.seq[i]
	l.seq[i] = x.Retain(g)
	old.Release(g)
	return true
}

// DictSet inserts or replaces a dict entry. Key and value are
// borrowed. Fails when the key is unhashable.
func (rt *Runtime) DictSet(g *Guard, d, k, v *Object) bool {
	rt.check(g)
	d.alive()
	if d.kind != KindDict {
		return rt.Fail(g, ErrType, "'%s' object does not support item assignment", d.TypeName())
	}
	h, ok := rt.Hash(g, k)
	if !ok {
		return false
	}
	d.tab.set(g, k, v, h)
	return true
}

// DictGet returns a new owned reference to the value for k. A miss
// fails with a key error.
func (rt *Runtime) DictGet(g *Guard, d, k *Object) (*Object, bool) {
	rt.check(g)
	d.alive()
	if d.kind != KindDict {
		rt.Fail(g, ErrType, "'%s' object is not subscriptable", d.TypeName())
		return nil, false
	}
	h, ok := rt.Hash(g, k)
	if !ok {
		return nil, false
	}
	i := d.tab.lookup(g, k, h)
	if i < 0 {
		rt.Fail(g, ErrKey, "%s", rt.Repr(g, k))
		return nil, false
	}
	return d.tab.entries[i].val.Retain(g), true
}

// SetAdd inserts x into a set. x is borrowed. Fails when x is
// unhashable.
func (rt *Runtime) SetAdd(g *Guard, s, x *Object) bool {
	rt.check(g)
	s.alive()
	if s.kind != KindSet {
		return rt.Fail(g, ErrType, "'%s' object has no add()", s.TypeName())
	}
	h, ok := rt.Hash(g, x)
	if !ok {
		return false
	}
	s.tab.set(g, x, nil, h)
	return true
}

// Contains reports membership: keys for dicts, members for sets,
// elements for lists and tuples, substrings for str.
func (rt *Runtime) Contains(g *Guard, c, x *Object) (bool, bool) {
	rt.check(g)
	c.alive()
	x.alive()
	switch c.kind {
	case KindDict, KindSet:
		h, ok := rt.Hash(g, x)
		if !ok {
			return false, false
		}
		return c.tab.lookup(g, x, h) >= 0, true
	case KindList, KindTuple:
		for _, el := range c.seq {
			if equalKey(g, el, x) {
				return true, true
			}
		}
		return false, true
	case KindStr:
		if x.kind != KindStr {
			rt.Fail(g, ErrType, "cannot search for '%s' in str", x.TypeName())
			return false, false
		}
		return strings.Contains(c.s, x.s), true
	}
	rt.Fail(g, ErrType, "argument of type '%s' is not iterable", c.TypeName())
	return false, false
}
