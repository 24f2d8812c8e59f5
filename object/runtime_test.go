package object

import (
	"strings"
	"testing"
	"time"
)

func TestGuardMisusePanics(t *testing.T) {
	rt := NewTestRuntime(t)
	other := NewTestRuntime(t)

	g := rt.Lock()
	g.Unlock()
	mustPanic(t, func() { g.Unlock() })
	mustPanic(t, func() { rt.NewInt(g, 1) })

	og := other.Lock()
	defer og.Unlock()
	mustPanic(t, func() { rt.NewInt(og, 1) })
	mustPanic(t, func() { rt.NewInt(nil, 1) })
}

func TestLockIsExclusive(t *testing.T) {
	rt := NewTestRuntime(t)

	g := rt.Lock()
	acquired := make(chan *Guard)
	go func() {
		acquired <- rt.Lock()
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatalf("second Lock succeeded while token held")
	default:
	}

	g.Unlock()
	g2 := <-acquired
	g2.Unlock()
}

func TestCloseReportsLeaks(t *testing.T) {
	rt := New()
	g := rt.Lock()
	leaked := rt.NewInt(g, 1)
	_ = leaked
	g.Unlock()

	err := rt.Close()
	if err == nil {
		t.Fatalf("Close did not report the live object")
	}
	if !strings.Contains(err.Error(), "1 live object") {
		t.Errorf("leak error = %q, want mention of 1 live object", err)
	}
	if err := rt.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestCloseClean(t *testing.T) {
	rt := New()
	g := rt.Lock()
	o := rt.NewInt(g, 1)
	o.Release(g)
	g.Unlock()

	if err := rt.Close(); err != nil {
		t.Errorf("Close = %v, want nil", err)
	}
	mustPanic(t, func() { rt.Lock() })
}
