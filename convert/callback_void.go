package convert

import "github.com/ferryrt/ferry/object"

// The void function objects mirror Func0..Func3 with no result
// conversion: the host result is discarded after the pending-error
// check, and native functions report completion through their error
// alone. Host closures wrapping a native void function return None.

// Func0Void is a native procedure object of arity zero.
type Func0Void struct {
	capsule
	native func(*object.Guard) error
}

// Wrap0Void lifts a native procedure into a Func0Void.
func Wrap0Void(rt *object.Runtime, name string, fn func(*object.Guard) error) *Func0Void {
	return &Func0Void{capsule: capsule{rt: rt, name: name}, native: fn}
}

func (f *Func0Void) call(g *object.Guard) bool {
	if f.fn == nil {
		if f.native != nil {
			if err := f.native(g); err != nil {
				setPending(g, err)
				return false
			}
			return true
		}
		return f.failUnset(g)
	}
	res, ok := f.callHost(g)
	if !ok {
		return false
	}
	res.Release(g)
	return true
}

// Call invokes the procedure under a guard the caller already holds.
func (f *Func0Void) Call(g *object.Guard) error {
	if !f.call(g) {
		return takeErr(g)
	}
	return nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func0Void) Invoke() {
	g := f.rt.Lock()
	defer g.Unlock()
	if !f.call(g) {
		f.rt.Escalate(g, "callback "+f.name)
	}
}

// Func1Void is a native procedure object of arity one.
type Func1Void[A1 any] struct {
	capsule
	native func(*object.Guard, A1) error
	a1     Conv[A1]
}

// Wrap1Void lifts a native procedure into a Func1Void.
func Wrap1Void[A1 any](rt *object.Runtime, name string, a1 Conv[A1], fn func(*object.Guard, A1) error) *Func1Void[A1] {
	return &Func1Void[A1]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1}
}

func (f *Func1Void[A1]) call(g *object.Guard, a1 A1) bool {
	if f.fn == nil {
		if f.native != nil {
			if err := f.native(g, a1); err != nil {
				setPending(g, err)
				return false
			}
			return true
		}
		return f.failUnset(g)
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return false
	}
	res, ok := f.callHost(g, o1)
	o1.Release(g)
	if !ok {
		return false
	}
	res.Release(g)
	return true
}

// Call invokes the procedure under a guard the caller already holds.
func (f *Func1Void[A1]) Call(g *object.Guard, a1 A1) error {
	if !f.call(g, a1) {
		return takeErr(g)
	}
	return nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func1Void[A1]) Invoke(a1 A1) {
	g := f.rt.Lock()
	defer g.Unlock()
	if !f.call(g, a1) {
		f.rt.Escalate(g, "callback "+f.name)
	}
}

// Func2Void is a native procedure object of arity two.
type Func2Void[A1, A2 any] struct {
	capsule
	native func(*object.Guard, A1, A2) error
	a1     Conv[A1]
	a2     Conv[A2]
}

// Wrap2Void lifts a native procedure into a Func2Void.
func Wrap2Void[A1, A2 any](rt *object.Runtime, name string, a1 Conv[A1], a2 Conv[A2], fn func(*object.Guard, A1, A2) error) *Func2Void[A1, A2] {
	return &Func2Void[A1, A2]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1, a2: a2}
}

func (f *Func2Void[A1, A2]) call(g *object.Guard, a1 A1, a2 A2) bool {
	if f.fn == nil {
		if f.native != nil {
			if err := f.native(g, a1, a2); err != nil {
				setPending(g, err)
				return false
			}
			return true
		}
		return f.failUnset(g)
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return false
	}
	o2 := f.a2.ToHost(g, a2, f.pc.Get(1))
	if o2 == nil {
		o1.Release(g)
		return false
	}
	res, ok := f.callHost(g, o1, o2)
	o1.Release(g)
	o2.Release(g)
	if !ok {
		return false
	}
	res.Release(g)
	return true
}

// Call invokes the procedure under a guard the caller already holds.
func (f *Func2Void[A1, A2]) Call(g *object.Guard, a1 A1, a2 A2) error {
	if !f.call(g, a1, a2) {
		return takeErr(g)
	}
	return nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func2Void[A1, A2]) Invoke(a1 A1, a2 A2) {
	g := f.rt.Lock()
	defer g.Unlock()
	if !f.call(g, a1, a2) {
		f.rt.Escalate(g, "callback "+f.name)
	}
}

// Func3Void is a native procedure object of arity three.
type Func3Void[A1, A2, A3 any] struct {
	capsule
	native func(*object.Guard, A1, A2, A3) error
	a1     Conv[A1]
	a2     Conv[A2]
	a3     Conv[A3]
}

// Wrap3Void lifts a native procedure into a Func3Void.
func Wrap3Void[A1, A2, A3 any](rt *object.Runtime, name string, a1 Conv[A1], a2 Conv[A2], a3 Conv[A3], fn func(*object.Guard, A1, A2, A3) error) *Func3Void[A1, A2, A3] {
	return &Func3Void[A1, A2, A3]{capsule: capsule{rt: rt, name: name}, native: fn, a1: a1, a2: a2, a3: a3}
}

func (f *Func3Void[A1, A2, A3]) call(g *object.Guard, a1 A1, a2 A2, a3 A3) bool {
	if f.fn == nil {
		if f.native != nil {
			if err := f.native(g, a1, a2, a3); err != nil {
				setPending(g, err)
				return false
			}
			return true
		}
		return f.failUnset(g)
	}
	o1 := f.a1.ToHost(g, a1, f.pc.Get(0))
	if o1 == nil {
		return false
	}
	o2 := f.a2.ToHost(g, a2, f.pc.Get(1))
	if o2 == nil {
		o1.Release(g)
		return false
	}
	o3 := f.a3.ToHost(g, a3, f.pc.Get(2))
	if o3 == nil {
		o1.Release(g)
		o2.Release(g)
		return false
	}
	res, ok := f.callHost(g, o1, o2, o3)
	o1.Release(g)
	o2.Release(g)
	o3.Release(g)
	if !ok {
		return false
	}
	res.Release(g)
	return true
}

// Call invokes the procedure under a guard the caller already holds.
func (f *Func3Void[A1, A2, A3]) Call(g *object.Guard, a1 A1, a2 A2, a3 A3) error {
	if !f.call(g, a1, a2, a3) {
		return takeErr(g)
	}
	return nil
}

// Invoke acquires the token itself and escalates failures.
func (f *Func3Void[A1, A2, A3]) Invoke(a1 A1, a2 A2, a3 A3) {
	g := f.rt.Lock()
	defer g.Unlock()
	if !f.call(g, a1, a2, a3) {
		f.rt.Escalate(g, "callback "+f.name)
	}
}

// FuncOf0Void builds the pair for arity-zero procedures.
func FuncOf0Void() Conv[*Func0Void] {
	return Conv[*Func0Void]{
		from: func(g *object.Guard, v *object.Object, dst **Func0Void) bool {
			f := &Func0Void{}
			if !f.bind(g, v, 0) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func0Void, pc Policy) *object.Object {
			rt := g.Runtime()
			if f == nil || (f.fn == nil && f.native == nil) {
				rt.Fail(g, object.ErrValue, "function is nil")
				return nil
			}
			if f.fn != nil {
				return pc.Apply(g, f.fn.Retain(g))
			}
			return pc.Apply(g, rt.NewFunc(g, f.name, 0, func(g *object.Guard, args *object.Object) *object.Object {
				if err := f.native(g); err != nil {
					setPending(g, err)
					return nil
				}
				return g.Runtime().None()
			}))
		},
	}
}

// FuncOf1Void builds the pair for arity-one procedures.
func FuncOf1Void[A1 any](a1 Conv[A1]) Conv[*Func1Void[A1]] {
	return Conv[*Func1Void[A1]]{
		from: func(g *object.Guard, v *object.Object, dst **Func1Void[A1]) bool {
			f := &Func1Void[A1]{a1: a1}
			if !f.bind(g, v, 1) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func1Void[A1], pc Policy) *object.Object {
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
				if err := f.native(g, a); err != nil {
					setPending(g, err)
					return nil
				}
				return rt.None()
			}))
		},
	}
}

// FuncOf2Void builds the pair for arity-two procedures.
func FuncOf2Void[A1, A2 any](a1 Conv[A1], a2 Conv[A2]) Conv[*Func2Void[A1, A2]] {
	return Conv[*Func2Void[A1, A2]]{
		from: func(g *object.Guard, v *object.Object, dst **Func2Void[A1, A2]) bool {
			f := &Func2Void[A1, A2]{a1: a1, a2: a2}
			if !f.bind(g, v, 2) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func2Void[A1, A2], pc Policy) *object.Object {
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
				if err := f.native(g, a, b); err != nil {
					setPending(g, err)
					return nil
				}
				return rt.None()
			}))
		},
	}
}

// FuncOf3Void builds the pair for arity-three procedures.
func FuncOf3Void[A1, A2, A3 any](a1 Conv[A1], a2 Conv[A2], a3 Conv[A3]) Conv[*Func3Void[A1, A2, A3]] {
	return Conv[*Func3Void[A1, A2, A3]]{
		from: func(g *object.Guard, v *object.Object, dst **Func3Void[A1, A2, A3]) bool {
			f := &Func3Void[A1, A2, A3]{a1: a1, a2: a2, a3: a3}
			if !f.bind(g, v, 3) {
				*dst = nil
				return false
			}
			*dst = f
			return true
		},
		into: func(g *object.Guard, f *Func3Void[A1, A2, A3], pc Policy) *object.Object {
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
				if err := f.native(g, a, b, c); err != nil {
					setPending(g, err)
					return nil
				}
				return rt.None()
			}))
		},
	}
}
