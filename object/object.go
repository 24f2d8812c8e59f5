package object

import (
	"math/big"
)

// Kind identifies the dynamic type of an Object.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindList
	KindTuple
	KindDict
	KindSet
	KindFunc
	KindIter
	KindMessage
)

var kindNames = [...]string{
	KindNone:    "NoneType",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindStr:     "str",
	KindBytes:   "bytes",
	KindList:    "list",
	KindTuple:   "tuple",
	KindDict:    "dict",
	KindSet:     "set",
	KindFunc:    "function",
	KindIter:    "iterator",
	KindMessage: "message",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Callable is the native implementation behind a func object. It
// receives the argument tuple borrowed and returns a new owned
// reference, or nil with the pending error set.
type Callable func(g *Guard, args *Object) *Object

type funcValue struct {
	name  string
	arity int // -1 accepts any argument count
	call  Callable
}

type iterValue struct {
	next func(g *Guard) *Object
	stop func(g *Guard) // releases iteration state; nil once run
}

type messageValue struct {
	name string
	raw  []byte
}

// Object is a reference-counted host value. All access requires the
// runtime's guard; objects are not safe for use after their count
// reaches zero.
type Object struct {
	rt       *Runtime
	kind     Kind
	refs     int64
	seqno    uint64
	immortal bool
	dead     bool

	i   int64
	big *big.Int // non-nil only when the value does not fit in i
	f   float64
	s   string
	b   []byte
	seq []*Object // list, tuple
	tab *table    // dict, set
	fn  *funcValue
	it  *iterValue
	msg *messageValue
}

// Kind reports the object's dynamic type.
func (o *Object) Kind() Kind { return o.kind }

// TypeName is the lowercase kind name used in error messages.
func (o *Object) TypeName() string { return o.kind.String() }

// Refs reports the current reference count. Immortal singletons
// always report 1.
func (o *Object) Refs() int64 {
	if o.immortal {
		return 1
	}
	return o.refs
}

// Retain increments the reference count and returns the object.
func (o *Object) Retain(g *Guard) *Object {
	o.rt.check(g)
	o.alive()
	if !o.immortal {
		o.refs++
	}
	return o
}

// Release decrements the reference count, tearing the object down
// when it reaches zero.
func (o *Object) Release(g *Guard) {
	o.rt.check(g)
	o.alive()
	if o.immortal {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.free(g)
}

func (o *Object) alive() {
	if o.dead {
		panic("object: use of released object")
	}
}

func (o *Object) free(g *Guard) {
	o.dead = true
	switch o.kind {
	case KindList, KindTuple:
		for _, el := range o.seq {
			el.Release(g)
		}
		o.seq = nil
	case KindDict, KindSet:
		o.tab.release(g)
		o.tab = nil
	case KindIter:
		if o.it.stop != nil {
			stop := o.it.stop
			o.it.stop = nil
			stop(g)
		}
	}
	o.rt.live.Add(-1)
}

// IsNone reports whether the object is the none singleton.
func (o *Object) IsNone() bool { return o.kind == KindNone }

// IsTrue reports whether the object is the true singleton.
func (o *Object) IsTrue() bool { return o.kind == KindBool && o.i != 0 }

// AsInt64 returns the int payload. The second result is false for
// non-int objects and for values outside the int64 range.
func (o *Object) AsInt64() (int64, bool) {
	if o.kind != KindInt || o.big != nil {
		return 0, false
	}
	return o.i, true
}

// AsBigInt returns the int payload as a big.Int copy.
func (o *Object) AsBigInt() (*big.Int, bool) {
	if o.kind != KindInt {
		return nil, false
	}
	if o.big != nil {
		return new(big.Int).Set(o.big), true
	}
	return big.NewInt(o.i), true
}

// AsFloat returns the float payload.
func (o *Object) AsFloat() (float64, bool) {
	if o.kind != KindFloat {
		return 0, false
	}
	return o.f, true
}

// AsStr returns the text payload.
func (o *Object) AsStr() (string, bool) {
	if o.kind != KindStr {
		return "", false
	}
	return o.s, true
}

// AsBytes returns the byte-string payload. The slice is the object's
// own storage; callers must not mutate it.
func (o *Object) AsBytes() ([]byte, bool) {
	if o.kind != KindBytes {
		return nil, false
	}
	return o.b, true
}

// intFitsInt64 reports whether an int object fits the int64 range.
func (o *Object) intFitsInt64() bool {
	return o.kind == KindInt && o.big == nil
}

// bigValue returns the int payload widened to big.Int without copying
// when a big payload already exists.
func (o *Object) bigValue() *big.Int {
	if o.big != nil {
		return o.big
	}
	return big.NewInt(o.i)
}
