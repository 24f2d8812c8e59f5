package convert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ferryrt/ferry/object"
)

// hostAdder builds a host callable of the given arity that sums its
// int arguments and reports each call through calls.
func hostAdder(g *object.Guard, name string, arity int, calls *int) *object.Object {
	rt := g.Runtime()
	return rt.NewFunc(g, name, arity, func(g *object.Guard, args *object.Object) *object.Object {
		*calls++
		n, _ := rt.SeqLen(g, args)
		var sum int64
		for i := 0; i < n; i++ {
			el, _ := rt.SeqAt(g, args, i)
			v, _ := el.AsInt64()
			sum += v
		}
		return rt.NewInt(g, sum)
	})
}

func TestFuncOf1RoundTrip(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	double := rt.NewFunc(g, "double", 1, func(g *object.Guard, args *object.Object) *object.Object {
		calls++
		a, _ := rt.SeqAt(g, args, 0)
		n, _ := a.AsInt64()
		return rt.NewInt(g, 2*n)
	})

	conv := FuncOf1(Int, Int)
	var f *Func1[int, int]
	if !conv.FromHost(g, double, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if double.Refs() != 2 {
		t.Errorf("bound callable refs = %d, want 2", double.Refs())
	}

	got, err := f.Call(g, 21)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 42 {
		t.Errorf("Call(21) = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("host callable ran %d times, want 1", calls)
	}

	f.Close(g)
	f.Close(g)
	if double.Refs() != 1 {
		t.Errorf("refs after Close = %d, want 1", double.Refs())
	}
	double.Release(g)
}

func TestBindRejectsArityMismatch(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	sum := hostAdder(g, "sum", 2, &calls)
	defer sum.Release(g)

	conv := FuncOf3(Int, Int, Int, Int)
	var f *Func3[int, int, int, int]
	if conv.FromHost(g, sum, &f) {
		t.Fatalf("FromHost accepted an arity mismatch")
	}
	if f != nil {
		t.Errorf("dst = %v, want nil", f)
	}
	wantErr(t, g, object.ErrType, "sum() takes 2 argument(s) (3 given)")
	if calls != 0 {
		t.Errorf("host callable ran %d times during binding, want 0", calls)
	}
	if sum.Refs() != 1 {
		t.Errorf("refs after rejected bind = %d, want 1", sum.Refs())
	}
}

func TestBindRejectsNonCallable(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	v := rt.NewInt(g, 7)
	defer v.Release(g)

	conv := FuncOf0(Int)
	var f *Func0[int]
	if conv.FromHost(g, v, &f) {
		t.Fatalf("FromHost accepted an int")
	}
	wantErr(t, g, object.ErrType, "callable expected")
}

func TestBindAcceptsVariadic(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	sum := hostAdder(g, "sum", -1, &calls)

	conv := FuncOf2(Int, Int, Int)
	var f *Func2[int, int, int]
	if !conv.FromHost(g, sum, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	got, err := f.Call(g, 3, 4)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 7 {
		t.Errorf("Call(3, 4) = %d, want 7", got)
	}
	f.Close(g)
	sum.Release(g)
}

func TestCallArgumentConversionFails(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	id := hostAdder(g, "id", 1, &calls)

	conv := FuncOf1(OneOf(CaseOf[any](Int)), Int)
	var f *Func1[any, int]
	if !conv.FromHost(g, id, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}

	_, err := f.Call(g, any("not an int"))
	if err == nil {
		t.Fatalf("Call succeeded with an unconvertible argument")
	}
	var oe *object.Error
	if !errors.As(err, &oe) || oe.Kind != object.ErrType || oe.Msg != "no union alternative for string" {
		t.Errorf("Call error = %v, want no union alternative for string", err)
	}
	wantClean(t, g)
	if calls != 0 {
		t.Errorf("host callable ran %d times, want 0", calls)
	}

	f.Close(g)
	id.Release(g)
}

func TestCallResultConversionFails(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	word := rt.NewFunc(g, "word", 0, func(g *object.Guard, args *object.Object) *object.Object {
		return rt.NewStr(g, "x")
	})

	conv := FuncOf0(Int)
	var f *Func0[int]
	if !conv.FromHost(g, word, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}

	_, err := f.Call(g)
	if err == nil {
		t.Fatalf("Call succeeded with an unconvertible result")
	}
	var oe *object.Error
	if !errors.As(err, &oe) || oe.Kind != object.ErrType || oe.Msg != "expecting int" {
		t.Errorf("Call error = %v, want expecting int", err)
	}
	wantClean(t, g)

	f.Close(g)
	word.Release(g)
	if rt.Live() != 0 {
		t.Errorf("Live = %d after failed call, want 0", rt.Live())
	}
}

func TestCallAfterClose(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	sum := hostAdder(g, "sum", 2, &calls)

	conv := FuncOf2(Int, Int, Int)
	var f *Func2[int, int, int]
	if !conv.FromHost(g, sum, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	f.Close(g)
	sum.Release(g)

	_, err := f.Call(g, 1, 2)
	if err == nil {
		t.Fatalf("Call succeeded after Close")
	}
	var oe *object.Error
	if !errors.As(err, &oe) || oe.Kind != object.ErrRuntime || oe.Msg != "function target not set" {
		t.Errorf("Call error = %v, want function target not set", err)
	}
}

func TestHostBackedToHostUnwraps(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var calls int
	sum := hostAdder(g, "sum", 2, &calls)

	conv := FuncOf2(Int, Int, Int)
	var f *Func2[int, int, int]
	if !conv.FromHost(g, sum, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}

	// A bridge built around a host callable converts back to that
	// same callable, not to a fresh wrapper.
	back := conv.ToHost(g, f, Policy{})
	if back != sum {
		t.Errorf("ToHost returned a new object, want the original callable")
	}
	if sum.Refs() != 3 {
		t.Errorf("refs after unwrap = %d, want 3", sum.Refs())
	}

	back.Release(g)
	f.Close(g)
	sum.Release(g)
}

func TestWrapNativeFunctionForHost(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	f := Wrap1(rt, "triple", Int, Int, func(g *object.Guard, n int) (int, error) {
		return 3 * n, nil
	})

	conv := FuncOf1(Int, Int)
	o := conv.ToHost(g, f, Policy{})
	if o == nil {
		t.Fatalf("ToHost failed: %v", rt.Err(g))
	}
	if name := rt.FuncName(g, o); name != "triple" {
		t.Errorf("FuncName = %q, want %q", name, "triple")
	}
	if n, _ := rt.CallableArity(g, o); n != 1 {
		t.Errorf("CallableArity = %d, want 1", n)
	}

	seven := rt.NewInt(g, 7)
	args := rt.NewTuple(g, seven)
	seven.Release(g)
	res, ok := rt.Call(g, o, args)
	args.Release(g)
	if !ok {
		t.Fatalf("Call failed: %v", rt.Err(g))
	}
	if n, _ := res.AsInt64(); n != 21 {
		t.Errorf("triple(7) = %d, want 21", n)
	}
	res.Release(g)
	o.Release(g)
}

func TestNativeErrorBecomesPending(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	f := Wrap0(rt, "boom", Int, func(g *object.Guard) (int, error) {
		return 0, fmt.Errorf("kaboom %d", 9)
	})

	conv := FuncOf0(Int)
	o := conv.ToHost(g, f, Policy{})
	if o == nil {
		t.Fatalf("ToHost failed: %v", rt.Err(g))
	}
	if _, ok := rt.Call(g, o, nil); ok {
		t.Fatalf("Call succeeded, want failure")
	}
	wantErr(t, g, object.ErrRuntime, "kaboom 9")
	o.Release(g)
}

func TestNativeErrorKeepsKind(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	f := Wrap0(rt, "seed", Int, func(g *object.Guard) (int, error) {
		return 0, &object.Error{Kind: object.ErrValue, Msg: "bad seed"}
	})

	_, err := f.Call(g)
	if err == nil {
		t.Fatalf("Call succeeded, want failure")
	}
	var oe *object.Error
	if !errors.As(err, &oe) || oe.Kind != object.ErrValue || oe.Msg != "bad seed" {
		t.Errorf("Call error = %v, want ValueError bad seed", err)
	}
	wantClean(t, g)
}

func TestInvokeEscalates(t *testing.T) {
	rt := object.NewTestRuntime(t)

	f := Wrap1(rt, "reset", Int, Int, func(g *object.Guard, n int) (int, error) {
		return 0, &object.Error{Kind: object.ErrValue, Msg: "cannot reset to 3"}
	})

	defer func() {
		r := recover()
		fe, ok := r.(*object.FatalError)
		if !ok {
			t.Fatalf("recovered %T (%v), want *object.FatalError", r, r)
		}
		if fe.Context != "callback reset" {
			t.Errorf("Context = %q, want %q", fe.Context, "callback reset")
		}
		var oe *object.Error
		if !errors.As(fe, &oe) || oe.Kind != object.ErrValue || oe.Msg != "cannot reset to 3" {
			t.Errorf("Err = %v, want cannot reset to 3", fe.Err)
		}
	}()
	f.Invoke(3)
	t.Fatalf("Invoke returned after a failed call")
}

func TestInvokeAcquiresToken(t *testing.T) {
	rt := object.NewTestRuntime(t)

	f := Wrap2(rt, "mul", Int, Int, Int, func(g *object.Guard, a, b int) (int, error) {
		// The guard handed in must be usable for host work.
		o := g.Runtime().NewInt(g, int64(a*b))
		defer o.Release(g)
		n, _ := o.AsInt64()
		return int(n), nil
	})

	got := f.Invoke(6, 7)
	if got != 42 {
		t.Errorf("Invoke(6, 7) = %d, want 42", got)
	}
}

func TestToHostNilFunction(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := FuncOf1(Int, Int)
	if conv.ToHost(g, nil, Policy{}) != nil {
		t.Fatalf("ToHost accepted a nil function")
	}
	wantErr(t, g, object.ErrValue, "function is nil")

	// A closed host-backed bridge is as empty as a nil one.
	var calls int
	sum := hostAdder(g, "sum", 1, &calls)
	var f *Func1[int, int]
	if !conv.FromHost(g, sum, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	f.Close(g)
	sum.Release(g)
	if conv.ToHost(g, f, Policy{}) != nil {
		t.Fatalf("ToHost accepted a closed function")
	}
	wantErr(t, g, object.ErrValue, "function is nil")
}

func TestVoidProcedures(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	var log []int64
	record := rt.NewFunc(g, "record", 1, func(g *object.Guard, args *object.Object) *object.Object {
		a, _ := rt.SeqAt(g, args, 0)
		n, _ := a.AsInt64()
		log = append(log, n)
		return rt.None()
	})

	conv := FuncOf1Void(Int)
	var f *Func1Void[int]
	if !conv.FromHost(g, record, &f) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if err := f.Call(g, 5); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if err := f.Call(g, 8); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(log) != 2 || log[0] != 5 || log[1] != 8 {
		t.Errorf("log = %v, want [5 8]", log)
	}
	f.Close(g)
	record.Release(g)

	// Native procedures exposed to the host complete with None.
	var last int
	nf := Wrap1Void(rt, "store", Int, func(g *object.Guard, n int) error {
		last = n
		return nil
	})
	o := conv.ToHost(g, nf, Policy{})
	if o == nil {
		t.Fatalf("ToHost failed: %v", rt.Err(g))
	}
	twelve := rt.NewInt(g, 12)
	args := rt.NewTuple(g, twelve)
	twelve.Release(g)
	res, ok := rt.Call(g, o, args)
	args.Release(g)
	if !ok {
		t.Fatalf("Call failed: %v", rt.Err(g))
	}
	if res.Kind() != object.KindNone {
		t.Errorf("result kind = %v, want none", res.Kind())
	}
	if last != 12 {
		t.Errorf("store(12) recorded %d", last)
	}
	res.Release(g)
	o.Release(g)
}
