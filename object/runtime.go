package object

import (
	"fmt"
	"hash/maphash"
	"math"
	"math/big"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	minInt64Big = big.NewInt(math.MinInt64)
	maxInt64Big = big.NewInt(math.MaxInt64)
)

// Runtime owns a heap of reference-counted Objects, the pending-error
// slot, and the exclusive-access token that serializes all access.
type Runtime struct {
	sem     chan struct{}
	logger  *zap.Logger
	seed    maphash.Seed
	failure FailureMode

	live  atomic.Int64
	seqno atomic.Uint64

	none   *Object
	vtrue  *Object
	vfalse *Object

	// Guarded by the token.
	pending *Error

	msgMu    sync.RWMutex
	msgTypes map[string]struct{}

	mu     sync.Mutex
	closed bool
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := &Runtime{
		sem:      make(chan struct{}, 1),
		logger:   cfg.logger,
		seed:     cfg.seed,
		failure:  cfg.failure,
		msgTypes: make(map[string]struct{}),
	}
	rt.none = rt.immortalObject(KindNone)
	rt.vtrue = rt.immortalObject(KindBool)
	rt.vtrue.i = 1
	rt.vfalse = rt.immortalObject(KindBool)
	return rt
}

// Close marks the runtime closed. It is idempotent and reports, via
// error and the runtime logger, any objects still alive.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	rt.closed = true

	if n := rt.live.Load(); n > 0 {
		rt.logger.Warn("runtime closed with live objects", zap.Int64("live", n))
		return fmt.Errorf("close: %d live object(s)", n)
	}
	return nil
}

// Live reports the number of live non-singleton objects.
func (rt *Runtime) Live() int64 { return rt.live.Load() }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *zap.Logger { return rt.logger }

// Guard proves possession of the runtime's exclusive-access token.
// It is produced by Lock, invalidated by Unlock, and required by
// every operation that touches an Object.
type Guard struct {
	rt       *Runtime
	released bool
}

// Lock acquires the exclusive-access token, blocking until it is
// free, and returns the guard that proves possession.
func (rt *Runtime) Lock() *Guard {
	rt.mu.Lock()
	closed := rt.closed
	rt.mu.Unlock()
	if closed {
		panic("object: Lock of closed runtime")
	}
	rt.sem <- struct{}{}
	return &Guard{rt: rt}
}

// Unlock releases the token. Unlocking twice panics.
func (g *Guard) Unlock() {
	if g.released {
		panic("object: unlock of released guard")
	}
	g.released = true
	<-g.rt.sem
}

// Runtime returns the runtime this guard belongs to.
func (g *Guard) Runtime() *Runtime { return g.rt }

func (rt *Runtime) check(g *Guard) {
	if g == nil {
		panic("object: nil guard")
	}
	if g.rt != rt {
		panic("object: guard belongs to a different runtime")
	}
	if g.released {
		panic("object: use of released guard")
	}
}

func (rt *Runtime) immortalObject(k Kind) *Object {
	return &Object{rt: rt, kind: k, refs: 1, immortal: true}
}

func (rt *Runtime) alloc(g *Guard, k Kind) *Object {
	rt.check(g)
	rt.live.Add(1)
	return &Object{rt: rt, kind: k, refs: 1, seqno: rt.seqno.Add(1)}
}

// None returns the none singleton.
func (rt *Runtime) None() *Object { return rt.none }

// True returns the true singleton.
func (rt *Runtime) True() *Object { return rt.vtrue }

// False returns the false singleton.
func (rt *Runtime) False() *Object { return rt.vfalse }

// Bool returns the singleton for b.
func (rt *Runtime) Bool(b bool) *Object {
	if b {
		return rt.vtrue
	}
	return rt.vfalse
}

// NewInt creates an int object.
func (rt *Runtime) NewInt(g *Guard, v int64) *Object {
	o := rt.alloc(g, KindInt)
	o.i = v
	return o
}

// NewUint creates an int object from an unsigned value, widening past
// int64 when needed.
func (rt *Runtime) NewUint(g *Guard, v uint64) *Object {
	o := rt.alloc(g, KindInt)
	if v <= math.MaxInt64 {
		o.i = int64(v)
		return o
	}
	o.big = new(big.Int).SetUint64(v)
	return o
}

// NewBigInt creates an int object from v, which is copied. Values
// that fit in an int64 are stored narrow.
func (rt *Runtime) NewBigInt(g *Guard, v *big.Int) *Object {
	o := rt.alloc(g, KindInt)
	if v.Cmp(minInt64Big) >= 0 && v.Cmp(maxInt64Big) <= 0 {
		o.i = v.Int64()
		return o
	}
	o.big = new(big.Int).Set(v)
	return o
}

// NewFloat creates a float object.
func (rt *Runtime) NewFloat(g *Guard, v float64) *Object {
	o := rt.alloc(g, KindFloat)
	o.f = v
	return o
}

// NewStr creates a text object.
func (rt *Runtime) NewStr(g *Guard, s string) *Object {
	o := rt.alloc(g, KindStr)
	o.s = s
	return o
}

// NewBytes creates a byte-string object. The slice is copied.
func (rt *Runtime) NewBytes(g *Guard, b []byte) *Object {
	o := rt.alloc(g, KindBytes)
	o.b = append([]byte(nil), b...)
	return o
}

// NewList creates a list holding the given elements, which are
// borrowed: the list retains its own references.
func (rt *Runtime) NewList(g *Guard, elems ...*Object) *Object {
	o := rt.alloc(g, KindList)
	o.seq = make([]*Object, 0, len(elems))
	for _, el := range elems {
		o.seq = append(o.seq, el.Retain(g))
	}
	return o
}

// NewTuple creates a tuple holding the given elements, which are
// borrowed.
func (rt *Runtime) NewTuple(g *Guard, elems ...*Object) *Object {
	o := rt.alloc(g, KindTuple)
	o.seq = make([]*Object, 0, len(elems))
	for _, el := range elems {
		o.seq = append(o.seq, el.Retain(g))
	}
	return o
}

// NewDict creates an empty dict.
func (rt *Runtime) NewDict(g *Guard) *Object {
	o := rt.alloc(g, KindDict)
	o.tab = newTable()
	return o
}

// NewSet creates an empty set.
func (rt *Runtime) NewSet(g *Guard) *Object {
	o := rt.alloc(g, KindSet)
	o.tab = newTable()
	return o
}

// NewFunc creates a callable object. Arity below zero accepts any
// argument count.
func (rt *Runtime) NewFunc(g *Guard, name string, arity int, call Callable) *Object {
	o := rt.alloc(g, KindFunc)
	o.fn = &funcValue{name: name, arity: arity, call: call}
	return o
}

// NewFuncIter creates an iterator object driven by next, which must
// return a new owned reference per element and nil at exhaustion
// (with no pending error) or on failure (with one). stop, if not nil,
// releases iteration state; it runs at most once, on exhaustion or
// teardown, whichever comes first.
func (rt *Runtime) NewFuncIter(g *Guard, next func(*Guard) *Object, stop func(*Guard)) *Object {
	o := rt.alloc(g, KindIter)
	o.it = &iterValue{next: next, stop: stop}
	return o
}
