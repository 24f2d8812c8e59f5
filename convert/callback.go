package convert

import (
	"errors"

	"github.com/ferryrt/ferry/object"
)

// capsule is the shared core of the native function objects: the
// bound host callable, its runtime, and the argument policy.
type capsule struct {
	rt   *object.Runtime
	fn   *object.Object
	name string
	pc   Policy
}

// bind validates and retains a host callable during construction.
// The declared arity must match the bridge's slot count before any
// call is made.
func (c *capsule) bind(g *object.Guard, v *object.Object, arity int) bool {
	rt := g.Runtime()
	n, ok := rt.CallableArity(g, v)
	if !ok {
		return false
	}
	if n >= 0 && n != arity {
		return rt.Fail(g, object.ErrType, "%s() takes %d argument(s) (%d given)",
			rt.FuncName(g, v), n, arity)
	}
	c.rt = rt
	c.fn = v.Retain(g)
	c.name = rt.FuncName(g, v)
	return true
}

// Close releases the bound host callable. Closing twice is a no-op;
// native-backed functions hold no host reference and keep working.
func (c *capsule) Close(g *object.Guard) {
	if c.fn != nil {
		c.fn.Release(g)
		c.fn = nil
	}
}

func (c *capsule) callHost(g *object.Guard, args ...*object.Object) (*object.Object, bool) {
	rt := g.Runtime()
	tup := rt.NewTuple(g, args...)
	res, ok := rt.Call(g, c.fn, tup)
	tup.Release(g)
	return res, ok
}

func (c *capsule) failUnset(g *object.Guard) bool {
	return g.Runtime().Fail(g, object.ErrRuntime, "function target not set")
}

// setPending surfaces a native error as the pending error, keeping
// its kind when it already is a host error.
func setPending(g *object.Guard, err error) {
	rt := g.Runtime()
	var oe *object.Error
	if errors.As(err, &oe) {
		rt.Fail(g, oe.Kind, "%s", oe.Msg)
		return
	}
	rt.Fail(g, object.ErrRuntime, "%v", err)
}

// Func0 is a native function object of arity zero.
type Func0[R any] struct {
	capsule
	native func(*object.Guard) (R, error)
	ret    Conv[R]
}

// Wrap0 lifts a native function into a Func0 so FuncOf0's ToHost can
// hand it to the host.
func Wrap0[R any](rt *object.Runtime, name string, ret Conv[R], fn func(*object.Guard) (R, error)) *Func0[R] {
	return &Func0[R]{capsule: capsule{rt: rt, name: name}, native: fn, ret: ret}
}

func (f *Func0[R]) call(g *object.Guard) (R, bool) {
	var zero R
	if f.fn == nil {
		if f.native != nil {
			r, err := f.native(g)
			if err != nil {
				setPending(g, err)
				return zero, false
			}
			return r, true
		}
		f.failUnset(g)
		return zero, false
	}
	res, ok := f.callHost(g)
	if !ok {
		return zero, false
	}
	var r R
	ok = f.ret.FromHost(g, res, &r)
	res.Release(g)
	if !ok {
		return zero, false
	}
	return r, true
}

// Call invokes the function under a guard the caller already holds.
// Failure comes back as a native error with the pending state
// cleared.
func (f *Func0[R]) Call(g *object.Guard) (R, error) {
	r, ok := f.call(g)
	if !ok {
		var zero R
		return zero, takeErr(g)
	}
	return r, nil
}

// Invoke acquires the token for the duration of the call and
// escalates any failure through the runtime's callback failure
// channel. It is the form to hand into native APIs that cannot
// return errors.
func (f *Func0[R]) Invoke() R {
	g := f.rt.Lock()
	defer g.Unlock()
	r, ok := f.call(g)
	if !ok {
		f.rt.Escalate(g, "callback "+f.name)
	}
	return r
}

// Func1 is a native function object of arity one.
type Func1[A1, R any] struct {
	capsule
	native func(*object.Guard, A1) (R, error)
	a1     Conv[A1]
	ret    Conv[R]
}

// Wrap1 lifts a native function into a Func1.
func Wrap1[A1, R any](rt *object.Runtime, name string, a1 Conv[A1], ret Conv[R], fn func(*object.Guard, A1) (R, error)) *Func1[A1, R] {
	return &Func1[A1, R]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1, ret: ret}
}

func (f *Func1[A1, R]) call(g *object.Guard, a1 A1) (R, bool) {
	var zero R
	if f.fn == nil {
		if f.native != nil {
			r, err := f.native(g, a1)
			if err != nil {
				setPending(g, err)
				return zero, false
			}
			return r, true
		}
		f.failUnset(g)
		return zero, false
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return zero, false
	}
	res, ok := f.callHost(g, o1)
	o1.Release(g)
	if !ok {
		return zero, false
	}
	var r R
	ok = f.ret.FromHost(g, res, &r)
	res.Release(g)
	if !ok {
		return zero, false
	}
	return r, true
}

// Call invokes the function under a guard the caller already holds.
func (f *Func1[A1, R]) Call(g *object.Guard, a1 A1) (R, error) {
	r, ok := f.call(g, a1)
	if !ok {
		var zero R
		return zero, takeErr(g)
	}
	return r, nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func1[A1, R]) Invoke(a1 A1) R {
	g := f.rt.Lock()
	defer g.Unlock()
	r, ok := f.call(g, a1)
	if !ok {
		f.rt.Escalate(g, "callback "+f.name)
	}
	return r
}

// Func2 is a native function object of arity two.
type Func2[A1, A2, R any] struct {
	capsule
	native func(*object.Guard, A1, A2) (R, error)
	a1     Conv[A1]
	a2     Conv[A2]
	ret    Conv[R]
}

// Wrap2 lifts a native function into a Func2.
func Wrap2[A1, A2, R any](rt *object.Runtime, name string, a1 Conv[A1], a2 Conv[A2], ret Conv[R], fn func(*object.Guard, A1, A2) (R, error)) *Func2[A1, A2, R] {
	return &Func2[A1, A2, R]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1, a2: a2, ret: ret}
}

func (f *Func2[A1, A2, R]) call(g *object.Guard, a1 A1, a2 A2) (R, bool) {
	var zero R
	if f.fn == nil {
		if f.native != nil {
			r, err := f.native(g, a1, a2)
			if err != nil {
				setPending(g, err)
				return zero, false
			}
			return r, true
		}
		f.failUnset(g)
		return zero, false
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return zero, false
	}
	o2 := f.a2.ToHost(g, a2, f.pc.Get(1))
	if o2 == nil {
		o1.Release(g)
		return zero, false
	}
	res, ok := f.callHost(g, o1, o2)
	o1.Release(g)
	o2.Release(g)
	if !ok {
		return zero, false
	}
	var r R
	ok = f.ret.FromHost(g, res, &r)
	res.Release(g)
	if !ok {
		return zero, false
	}
	return r, true
}

// Call invokes the function under a guard the caller already holds.
func (f *Func2[A1, A2, R]) Call(g *object.Guard, a1 A1, a2 A2) (R, error) {
	r, ok := f.call(g, a1, a2)
	if !ok {
		var zero R
		return zero, takeErr(g)
	}
	return r, nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func2[A1, A2, R]) Invoke(a1 A1, a2 A2) R {
	g := f.rt.Lock()
	defer g.Unlock()
	r, ok := f.call(g, a1, a2)
	if !ok {
		f.rt.Escalate(g, "callback "+f.name)
	}
	return r
}

// Func3 is a native function object of arity three.
type Func3[A1, A2, A3, R any] struct {
	capsule
	native func(*object.Guard, A1, A2, A3) (R, error)
	a1     Conv[A1]
	a2     Conv[A2]
	a3     Conv[A3]
	ret    Conv[R]
}

// Wrap3 lifts a native function into a Func3.
func Wrap3[A1, A2, A3, R any](rt *object.Runtime, name string, a1 Conv[A1], a2 Conv[A2], a3 Conv[A3], ret Conv[R], fn func(*object.Guard, A1, A2, A3) (R, error)) *Func3[A1, A2, A3, R] {
	return &Func3[A1, A2, A3, R]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1, a2: a2, a3: a3, ret: ret}
}

func (f *Func3[A1, A2, A3, R]) call(g *object.Guard, a1 A1, a2 A2, a3 A3) (R, bool) {
	var zero R
	if f.fn == nil {
		if f.native != nil {
			r, err := f.native(g, a1, a2, a3)
			if err != nil {
				setPending(g, err)
				return zero, false
			}
			return r, true
		}
		f.failUnset(g)
		return zero, false
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return zero, false
	}
	o2 := f.a2.ToHost(g, a2, f.pc.Get(1))
	if o2 == nil {
		o1.Release(g)
		return zero, false
	}
	o3 := f.a3.ToHost(g, a3, f.pc.Get(2))
	if o3 == nil {
		o1.Release(g)
		o2.Release(g)
		return zero, false
	}
	res, ok := f.callHost(g, o1, o2, o3)
	o1.Release(g)
	o2.Release(g)
	o3.Release(g)
	if !ok {
		return zero, false
	}
	var r R
	ok = f.ret.FromHost(g, res, &r)
	res.Release(g)
	if !ok {
		return zero, false
	}
	return r, true
}

// Call invokes the function under a guard the caller already holds.
func (f *Func3[A1, A2, A3, R]) Call(g *object.Guard, a1 A1, a2 A2, a3 A3) (R, error) {
	r, ok := f.call(g, a1, a2, a3)
	if !ok {
		var zero R
		return zero, takeErr(g)
	}
	return r, nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func3[A1, A2, A3, R]) Invoke(a1 A1, a2 A2, a3 A3) R {
	g := f.rt.Lock()
	defer g.Unlock()
	r, ok := f.call(g, a1, a2, a3)
	if !ok {
		f.rt.Escalate(g, "callback "+f.name)
	}
	return r
}

// FuncOf0 builds the pair for arity-zero callables.
func FuncOf0[R any](ret Conv[R]) Conv[*Func0[R]] {
	return Conv[*Func0[R]]{
		from: func(g *object.Guard, v *object.Object, dst **Func0[R]) bool {
			f := &Func0[R]{ret: ret}
			if !f.bind(g, v, 0) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func0[R], pc Policy) *object.Object {
			rt := g.Runtime()
			if f == nil || (f.fn == nil && f.native == nil) {
				rt.Fail(g, object.ErrValue, "function is nil")
				return nil
			}
			if f.fn != nil {
				return pc.Apply(g, f.fn.Retain(g))
			}
			return pc.Apply(g, rt.NewFunc(g, f.name, 0, func(g *object.Guard, args *object.Object) *object.Object {
				r, err := f.native(g)
				if err != nil {
					setPending(g, err)
					return nil
				}
				return f.ret.ToHost(g, r, Policy{})
			}))
		},
	}
}

// FuncOf1 builds the pair for arity-one callables.
func FuncOf1[A1, R any](a1 Conv[A1], ret Conv[R]) Conv[*Func1[A1, R]] {
	return Conv[*Func1[A1, R]]{
		from: func(g *object.Guard, v *object.Object, dst **Func1[A1, R]) bool {
			f := &Func1[A1, R]{a1: a1, ret: ret}
			if !f.bind(g, v, 1) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func1[A1, R], pc Policy) *object.Object {
			rt := g.Runtime()
			if f == nil || (f.fn == nil && f.native == nil) {
				rt.Fail(g, object.ErrValue, "function is nil")
				return nil
			}
			if f.fn != nil {
				return pc.Apply(g, f.fn.Retain(g))
			}
			return pc.Apply(g, rt.NewFunc(g, f.name, 1, func(g *object.Guard, args *object.Object) *object.Object {
				rt := g.Runtime()
				e1, _ := rt.SeqAt(g, args, 0)
				var a A1
				if !f.a1.FromHost(g, e1, &a) {
					return nil
				}
				r, err := f.native(g, a)
				if err != nil {
					setPending(g, err)
					return nil
				}
				return f.ret.ToHost(g, r, Policy{})
			}))
		},
	}
}

// FuncOf2 builds the pair for arity-two callables.
func FuncOf2[A1, A2, R any](a1 Conv[A1], a2 Conv[A2], ret Conv[R]) Conv[*Func2[A1, A2, R]] {
	return Conv[*Func2[A1, A2, R]]{
		from: func(g *object.Guard, v *object.Object, dst **Func2[A1, A2, R]) bool {
			f := &Func2[A1, A2, R]{a1: a1, a2: a2, ret: ret}
			if !f.bind(g, v, 2) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func2[A1, A2, R], pc Policy) *object.Object {
			rt := g.Runtime()
			if f == nil || (f.fn == nil && f.native == nil) {
				rt.Fail(g, object.ErrValue, "function is nil")
				return nil
			}
			if f.fn != nil {
				return pc.Apply(g, f.fn.Retain(g))
			}
			return pc.Apply(g, rt.NewFunc(g, f.name, 2, func(g *object.Guard, args *object.Object) *object.Object {
				rt := g.Runtime()
				e1, _ := rt.SeqAt(g, args, 0)
				e2, _ := rt.SeqAt(g, args, 1)
				var a A1
				var b A2
				if !f.a1.FromHost(g, e1, &a) || !f.a2.FromHost(g, e2, &b) {
					return nil
				}
				r, err := f.native(g, a, b)
				if err != nil {
					setPending(g, err)
					return nil
				}
				return f.ret.ToHost(g, r, Policy{})
			}))
		},
	}
}

// FuncOf3 builds the pair for arity-three callables.
func FuncOf3[A1, A2, A3, R any](a1 Conv[A1], a2 Conv[A2], a3 Conv[A3], ret Conv[R]) Conv[*Func3[A1, A2, A3, R]] {
	return Conv[*Func3[A1, A2, A3, R]]{
		from: func(g *object.Guard, v *object.Object, dst **Func3[A1, A2, A3, R]) bool {
			f := &Func3[A1, A2, A3, R]{a1: a1, a2: a2, a3: a3, ret: ret}
			if !f.bind(g, v, 3) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func3[A1, A2, A3, R], pc Policy) *object.Object {
			rt := g.Runtime()
			if f == nil || (f.fn == nil && f.native == nil) {
				rt.Fail(g, object.ErrValue, "function is nil")
				return nil
			}
			if f.fn != nil {
				return pc.Apply(g, f.fn.Retain(g))
			}
			return pc.Apply(g, rt.NewFunc(g, f.name, 3, func(g *object.Guard, args *object.Object) *object.Object {
				rt := g.Runtime()
				e1, _ := rt.SeqAt(g, args, 0)
				e2, _ := rt.SeqAt(g, args, 1)
				e3, _ := rt.SeqAt(g, args, 2)
				var a A1
				var b A2
				var c A3
				if !f.a1.FromHost(g, e1, &a) || !f.a2.FromHost(g, e2, &b) || !f.a3.FromHost(g, e3, &c) {
					return nil
				}
				r, err := f.native(g, a, b, c)
				if err != nil {
					setPending(g, err)
					return nil
				}
				return f.ret.ToHost(g, r, Policy{})
			}))
		},
	}
}

