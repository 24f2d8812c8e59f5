package convert

import (
	"testing"

	"github.com/ferryrt/ferry/object"
)

func TestZeroPolicyPassesThrough(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	o := rt.NewInt(g, 9)
	var pc Policy
	if got := pc.Apply(g, o); got != o {
		t.Errorf("Apply changed the object")
	}
	if pc.Apply(g, nil) != nil {
		t.Errorf("Apply conjured an object from nil")
	}
	o.Release(g)
}

func TestPolicyGetOutOfRange(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	pc := Policies(Text)
	o := rt.NewInt(g, 4)
	defer o.Release(g)

	// Positions past the declared elements, and any position of the
	// zero policy, are pass-through.
	if got := pc.Get(5).Apply(g, o); got != o {
		t.Errorf("Get(5) was not pass-through")
	}
	if got := pc.Get(-1).Apply(g, o); got != o {
		t.Errorf("Get(-1) was not pass-through")
	}
	if got := (Policy{}).Get(0).Apply(g, o); got != o {
		t.Errorf("zero policy Get(0) was not pass-through")
	}
}

func TestPoliciesIndexPerPosition(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	pc := Policies(Text, Policy{})

	b := rt.NewBytes(g, []byte("hi"))
	up := pc.Get(0).Apply(g, b)
	if up == nil {
		t.Fatalf("Apply failed: %v", rt.Err(g))
	}
	if s, _ := up.AsStr(); s != "hi" {
		t.Errorf("position 0 = %q, want %q", s, "hi")
	}
	up.Release(g)

	b2 := rt.NewBytes(g, []byte("raw"))
	same := pc.Get(1).Apply(g, b2)
	if same != b2 {
		t.Errorf("position 1 was not pass-through")
	}
	b2.Release(g)
}

func TestPoliciesNest(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	// Shaped like a list of lists of text.
	pc := Policies(Policies(Text))
	b := rt.NewBytes(g, []byte("deep"))
	up := pc.Get(0).Get(0).Apply(g, b)
	if up == nil {
		t.Fatalf("Apply failed: %v", rt.Err(g))
	}
	if up.Kind() != object.KindStr {
		t.Errorf("kind = %v, want str", up.Kind())
	}
	up.Release(g)
}

func TestTextPolicy(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	s := rt.NewStr(g, "already text")
	if got := Text.Apply(g, s); got != s {
		t.Errorf("str input was not passed through")
	}
	s.Release(g)

	b := rt.NewBytes(g, []byte("héllo"))
	up := Text.Apply(g, b)
	if up == nil {
		t.Fatalf("Apply failed: %v", rt.Err(g))
	}
	if got, _ := up.AsStr(); got != "héllo" {
		t.Errorf("upgraded = %q, want %q", got, "héllo")
	}
	up.Release(g)

	bad := rt.NewBytes(g, []byte{0xff, 0xfe})
	if Text.Apply(g, bad) != nil {
		t.Fatalf("Apply accepted invalid UTF-8")
	}
	wantErr(t, g, object.ErrValue, "invalid UTF-8 in byte string")

	n := rt.NewInt(g, 3)
	if Text.Apply(g, n) != nil {
		t.Fatalf("Apply accepted an int")
	}
	wantErr(t, g, object.ErrType, "expecting bytes, got int 3")

	// Failed applications still consume their input.
	if rt.Live() != 0 {
		t.Errorf("Live = %d, want 0", rt.Live())
	}
}

func TestTextThroughConversion(t *testing.T) {
	rt := object.NewTestRuntime(t)
	g := rt.Lock()
	defer g.Unlock()

	o := String.ToHost(g, "née", Text)
	if o == nil {
		t.Fatalf("ToHost failed: %v", rt.Err(g))
	}
	if o.Kind() != object.KindStr {
		t.Errorf("kind = %v, want str", o.Kind())
	}
	var back string
	if !String.FromHost(g, o, &back) {
		t.Fatalf("FromHost failed: %v", rt.Err(g))
	}
	if back != "née" {
		t.Errorf("round trip = %q, want %q", back, "née")
	}
	o.Release(g)
}
