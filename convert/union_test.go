package convert

import (
	"testing"

	"github.com/ferryrt/ferry/object"
)

func TestOneOfDeclaredOrderWins(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	// Both alternatives accept a host int; the first declared commits.
	conv := OneOf(
		CaseOf[any](Int),
		CaseOf[any](Float64),
	)

	v := rt.NewInt(g, 5)
	defer v.Release(g)
	var got any
	if !conv.FromHost(g, v, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	wantClean(t, g)
	if n, ok := got.(int); !ok || n != 5 {
		t.Errorf("committed %T %v, want int 5", got, got)
	}

	f := rt.NewFloat(g, 2.5)
	defer f.Release(g)
	if !conv.FromHost(g, f, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if x, ok := got.(float64); !ok || x != 2.5 {
		t.Errorf("committed %T %v, want float64 2.5", got, got)
	}
}

func TestOneOfFallsPastRangeFailure(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := OneOf(
		CaseOf[any](Uint8),
		CaseOf[any](Int),
	)

	// 300 fails the uint8 window, then commits as int; the range
	// error from the failed attempt never leaks.
	v := rt.NewInt(g, 300)
	defer v.Release(g)
	var got any
	if !conv.FromHost(g, v, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	wantClean(t, g)
	if n, ok := got.(int); !ok || n != 300 {
		t.Errorf("committed %T %v, want int 300", got, got)
	}

	// 200 fits the first alternative.
	w := rt.NewInt(g, 200)
	defer w.Release(g)
	if !conv.FromHost(g, w, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if n, ok := got.(uint8); !ok || n != 200 {
		t.Errorf("committed %T %v, want uint8 200", got, got)
	}
}

func TestOneOfNothingMatches(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := OneOf(
		CaseOf[any](Int),
		CaseOf[any](Bool),
	)

	s := rt.NewStr(g, "nope")
	defer s.Release(g)
	var got any
	if conv.FromHost(g, s, &got) {
		t.Fatalf("FromHost succeeded on str")
	}
	wantErr(t, g, object.ErrType, "failed to convert to any union alternative")
}

func TestCaseOptionalFallsThroughOnNone(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := OneOf(
		CaseOptional[any](Int),
		CaseOf[any](Bool),
	)

	v := rt.NewInt(g, 5)
	defer v.Release(g)
	var got any
	if !conv.FromHost(g, v, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if n, ok := got.(int); !ok || n != 5 {
		t.Errorf("committed %T %v, want int 5", got, got)
	}

	// None is an absent payload, not a committed value.
	if conv.FromHost(g, rt.None(), &got) {
		t.Fatalf("FromHost committed None")
	}
	wantErr(t, g, object.ErrType, "failed to convert to any union alternative")
}

func TestCasePtrCommitsPointee(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := OneOf(
		CasePtr[any](String),
	)

	s := rt.NewStr(g, "deep")
	defer s.Release(g)
	var got any
	if !conv.FromHost(g, s, &got) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if v, ok := got.(string); !ok || v != "deep" {
		t.Errorf("committed %T %v, want string deep", got, got)
	}
}

func TestOneOfToHost(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	conv := OneOf(
		CaseOf[any](Int8),
		CaseOf[any](Int64),
		CaseOf[any](String),
	)

	// Dispatch is by exact dynamic type, not convertibility.
	o := conv.ToHost(g, any(int64(40)), Policy{})
	if o == nil {
		t.Fatalf("ToHost failed: %v", rt.Err(g))
	}
	if n, _ := o.AsInt64(); n != 40 {
		t.Errorf("ToHost = %d, want 40", n)
	}
	o.Release(g)

	o = conv.ToHost(g, any(int8(7)), Policy{})
	if n, _ := o.AsInt64(); n != 7 {
		t.Errorf("ToHost(int8) = %d, want 7", n)
	}
	o.Release(g)

	if conv.ToHost(g, any(3.5), Policy{}) != nil {
		t.Fatalf("ToHost accepted an undeclared type")
	}
	wantErr(t, g, object.ErrType, "no union alternative for float64")

	if conv.ToHost(g, nil, Policy{}) != nil {
		t.Fatalf("ToHost accepted a valueless union")
	}
	wantErr(t, g, object.ErrValue, "union is valueless")
}
