package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ferryrt/ferry/convert"
	"github.com/ferryrt/ferry/object"
	"github.com/ferryrt/ferry/protomsg"
	"github.com/ferryrt/ferry/seq"
	"github.com/ferryrt/ferry/slots"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run boundary-contract checks against a live runtime",
	Long: `Run the conversion layer's contract checks end to end: round
trips, range errors, union resolution order, arity validation, iterator
exhaustion, partial-build release, slot adapters, the callback bridge,
and the message bridge. Each check runs on a fresh runtime and also
verifies that it leaked no objects.`,
	Run: runSelftest,
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}

type check struct {
	name string
	run  func(g *object.Guard, rt *object.Runtime) error
}

var checks = []check{
	{"round-trip-sequence", checkRoundTrip},
	{"uint8-range", checkUint8Range},
	{"union-first-match", checkUnionOrder},
	{"arity-mismatch", checkArity},
	{"iterator-exhaustion", checkIterExhaustion},
	{"tohost-partial-release", checkPartialRelease},
	{"slot-adapters", checkSlotAdapters},
	{"callback-bridge", checkCallback},
	{"message-round-trip", checkMessage},
}

func runSelftest(cmd *cobra.Command, args []string) {
	logger := newLogger(cmd)
	defer logger.Sync()

	failed := 0
	for _, c := range checks {
		rt := object.New(object.WithLogger(logger))
		g := rt.Lock()
		err := c.run(g, rt)
		if err == nil && rt.Failed(g) {
			err = fmt.Errorf("pending error left behind: %v", rt.Err(g))
		}
		rt.ClearErr(g)
		g.Unlock()
		if err == nil {
			if n := rt.Live(); n != 0 {
				err = fmt.Errorf("leaked %d object(s)", n)
			}
		}
		rt.Close()

		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %-24s %v\n", c.name, err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", c.name)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d checks passed\n", len(checks)-failed, len(checks))
	if failed > 0 {
		os.Exit(1)
	}
}

func checkRoundTrip(g *object.Guard, rt *object.Runtime) error {
	conv := convert.SliceOf(convert.Int)
	in := []int{1, 2, 3}

	host := conv.ToHost(g, in, convert.Policy{})
	if host == nil {
		return fmt.Errorf("ToHost failed: %v", rt.Err(g))
	}
	defer host.Release(g)
	if n, _ := rt.Len(g, host); n != 3 {
		return fmt.Errorf("host length = %d, want 3", n)
	}

	var out []int
	if !conv.FromHost(g, host, &out) {
		return fmt.Errorf("FromHost failed: %v", rt.Err(g))
	}
	if !reflect.DeepEqual(out, in) {
		return fmt.Errorf("round trip = %v, want %v", out, in)
	}
	return nil
}

func checkUint8Range(g *object.Guard, rt *object.Runtime) error {
	cases := []struct {
		val int64
		ok  bool
	}{
		{-5, false},
		{300, false},
		{200, true},
	}
	for _, tc := range cases {
		host := rt.NewInt(g, tc.val)
		var dst uint8
		ok := convert.Uint8.FromHost(g, host, &dst)
		host.Release(g)
		if ok != tc.ok {
			return fmt.Errorf("FromHost(%d) ok = %v, want %v (%v)", tc.val, ok, tc.ok, rt.Err(g))
		}
		if !ok {
			e := rt.TakeErr(g)
			if e == nil || e.Kind != object.ErrValue {
				return fmt.Errorf("FromHost(%d) error = %v, want ValueError", tc.val, e)
			}
		} else if dst != 200 {
			return fmt.Errorf("FromHost(200) = %d", dst)
		}
	}
	return nil
}

func checkUnionOrder(g *object.Guard, rt *object.Runtime) error {
	// A host int matches both the int and float alternatives; declared
	// order must commit to int.
	union := convert.OneOf[any](
		convert.CaseOf[any](convert.Bool),
		convert.CaseOf[any](convert.Int),
		convert.CaseOf[any](convert.Float64),
	)
	host := rt.NewInt(g, 7)
	defer host.Release(g)

	var got any
	if !union.FromHost(g, host, &got) {
		return fmt.Errorf("FromHost failed: %v", rt.Err(g))
	}
	if rt.Failed(g) {
		return fmt.Errorf("error state not clear after commit: %v", rt.Err(g))
	}
	if v, ok := got.(int); !ok || v != 7 {
		return fmt.Errorf("committed %T %v, want int 7", got, got)
	}
	return nil
}

func checkArity(g *object.Guard, rt *object.Runtime) error {
	called := false
	fn := rt.NewFunc(g, "f", 2, func(g *object.Guard, args *object.Object) *object.Object {
		called = true
		return rt.None()
	})
	defer fn.Release(g)

	conv := convert.FuncOf3(convert.Int, convert.Int, convert.Int, convert.Int)
	var f *convert.Func3[int, int, int, int]
	if conv.FromHost(g, fn, &f) {
		return fmt.Errorf("arity 2 callable bound to 3-argument bridge")
	}
	if called {
		return fmt.Errorf("callable was invoked during failed construction")
	}
	e := rt.TakeErr(g)
	if e == nil || e.Kind != object.ErrType {
		return fmt.Errorf("error = %v, want TypeError", e)
	}
	return nil
}

func checkIterExhaustion(g *object.Guard, rt *object.Runtime) error {
	h := seq.Share([]int{10, 20})
	defer h.Release()

	it := seq.NewIter(h)
	if h.Refs() != 2 {
		return fmt.Errorf("refs after NewIter = %d, want 2", h.Refs())
	}
	for i := 0; i < 2; i++ {
		if it.Next() == nil {
			return fmt.Errorf("exhausted after %d element(s)", i)
		}
	}
	if it.Next() != nil {
		return fmt.Errorf("iterator yielded past the end")
	}
	if h.Refs() != 1 {
		return fmt.Errorf("refs after exhaustion = %d, want 1", h.Refs())
	}
	if it.Next() != nil {
		return fmt.Errorf("exhaustion was not terminal")
	}
	return nil
}

func checkPartialRelease(g *object.Guard, rt *object.Runtime) error {
	// Element 3 of 5 has the wrong fixed length, so building the host
	// sequence must fail and release everything already built.
	conv := convert.SliceOf(convert.ArrayOf(1, convert.Int))
	in := [][]int{{1}, {2}, {3, 4}, {5}, {6}}

	if host := conv.ToHost(g, in, convert.Policy{}); host != nil {
		host.Release(g)
		return fmt.Errorf("ToHost succeeded on a failing element")
	}
	e := rt.TakeErr(g)
	if e == nil {
		return fmt.Errorf("no pending error after failed build")
	}
	if n := rt.Live(); n != 0 {
		return fmt.Errorf("partial sequence not released: %d live object(s)", n)
	}
	return nil
}

func checkSlotAdapters(g *object.Guard, rt *object.Runtime) error {
	if n := slots.Size(g, rt.NewInt(g, 5)); n != 5 {
		return fmt.Errorf("Size = %d, want 5", n)
	}
	if n := slots.Size(g, rt.NewInt(g, -3)); n != -1 {
		return fmt.Errorf("Size(-3) = %d, want -1", n)
	}
	if e := rt.TakeErr(g); e == nil || e.Kind != object.ErrValue {
		return fmt.Errorf("Size(-3) error = %v, want ValueError", e)
	}

	one := rt.NewInt(g, 1)
	list := rt.NewList(g, one)
	one.Release(g)
	if i := slots.Index(g, list, 0); i != 0 {
		return fmt.Errorf("Index = %d, want 0", i)
	}

	if v := slots.Truth(g, rt.True()); v != 1 {
		return fmt.Errorf("Truth(True) = %d, want 1", v)
	}
	if c := slots.Cmp(g, rt.NewStr(g, "x")); c != -2 {
		return fmt.Errorf("Cmp(str) = %d, want sentinel -2", c)
	}
	rt.ClearErr(g)
	return nil
}

func checkCallback(g *object.Guard, rt *object.Runtime) error {
	add := rt.NewFunc(g, "add", 2, func(g *object.Guard, args *object.Object) *object.Object {
		a, _ := rt.SeqAt(g, args, 0)
		b, _ := rt.SeqAt(g, args, 1)
		av, _ := a.AsInt64()
		bv, _ := b.AsInt64()
		return rt.NewInt(g, av+bv)
	})
	defer add.Release(g)

	conv := convert.FuncOf2(convert.Int, convert.Int, convert.Int)
	var f *convert.Func2[int, int, int]
	if !conv.FromHost(g, add, &f) {
		return fmt.Errorf("bind failed: %v", rt.Err(g))
	}
	defer f.Close(g)

	sum, err := f.Call(g, 2, 3)
	if err != nil {
		return fmt.Errorf("Call failed: %v", err)
	}
	if sum != 5 {
		return fmt.Errorf("Call(2, 3) = %d, want 5", sum)
	}
	return nil
}

func checkMessage(g *object.Guard, rt *object.Runtime) error {
	const name = "google.protobuf.Int64Value"
	rt.RegisterMessageType(name)

	conv := protomsg.MessageOf[*wrapperspb.Int64Value](protomsg.Global())
	in := wrapperspb.Int64(42)

	host := conv.ToHost(g, in, convert.Policy{})
	if host == nil {
		return fmt.Errorf("ToHost failed: %v", rt.Err(g))
	}
	defer host.Release(g)

	var out *wrapperspb.Int64Value
	if !conv.FromHost(g, host, &out) {
		return fmt.Errorf("FromHost failed: %v", rt.Err(g))
	}
	if !proto.Equal(in, out) {
		return fmt.Errorf("round trip = %v, want %v", out, in)
	}
	return nil
}
