// Package bench measures the boundary crossing costs of the conversion
// layer.
//
// Run with: go test -bench=. ./bench/
package bench

import (
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ferryrt/ferry/convert"
	"github.com/ferryrt/ferry/object"
	"github.com/ferryrt/ferry/protomsg"
	"github.com/ferryrt/ferry/seq"
	"github.com/ferryrt/ferry/slots"
)

// --- Scalar crossings ---

func BenchmarkInt_ToHost(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := convert.Int.ToHost(g, 42, convert.Policy{})
		o.Release(g)
	}
}

func BenchmarkInt_FromHost(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	host := rt.NewInt(g, 42)
	defer host.Release(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v int
		convert.Int.FromHost(g, host, &v)
	}
}

func BenchmarkString_RoundTrip(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := convert.String.ToHost(g, "boundary", convert.Text)
		var s string
		convert.String.FromHost(g, o, &s)
		o.Release(g)
	}
}

// --- Aggregate crossings ---

func BenchmarkSlice100_ToHost(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	conv := convert.SliceOf(convert.Int)
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := conv.ToHost(g, in, convert.Policy{})
		o.Release(g)
	}
}

func BenchmarkSlice100_FromHost(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	conv := convert.SliceOf(convert.Int)
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	host := conv.ToHost(g, in, convert.Policy{})
	defer host.Release(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out []int
		conv.FromHost(g, host, &out)
	}
}

func BenchmarkMap_RoundTrip(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	conv := convert.MapOf(convert.String, convert.Int)
	in := map[string]int{"a": 1, "b": 2, "c": 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := conv.ToHost(g, in, convert.Policy{})
		var out map[string]int
		conv.FromHost(g, o, &out)
		o.Release(g)
	}
}

// --- Union resolution ---

func BenchmarkUnion_FirstAlternative(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	union := convert.OneOf[any](
		convert.CaseOf[any](convert.Int),
		convert.CaseOf[any](convert.Float64),
		convert.CaseOf[any](convert.String),
	)
	host := rt.NewInt(g, 7)
	defer host.Release(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v any
		union.FromHost(g, host, &v)
	}
}

func BenchmarkUnion_LastAlternative(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	union := convert.OneOf[any](
		convert.CaseOf[any](convert.Int),
		convert.CaseOf[any](convert.Float64),
		convert.CaseOf[any](convert.String),
	)
	host := rt.NewStr(g, "tail")
	defer host.Release(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v any
		union.FromHost(g, host, &v)
	}
}

// --- Protocol operations ---

func BenchmarkHash_Str(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	s := rt.NewStr(g, "a moderately sized key")
	defer s.Release(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rt.Hash(g, s)
	}
}

func BenchmarkSlots_Size(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		slots.Size(g, rt.NewInt(g, 17))
	}
}

func BenchmarkCallback_Call(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	add := rt.NewFunc(g, "add", 2, func(g *object.Guard, args *object.Object) *object.Object {
		a, _ := rt.SeqAt(g, args, 0)
		c, _ := rt.SeqAt(g, args, 1)
		av, _ := a.AsInt64()
		cv, _ := c.AsInt64()
		return rt.NewInt(g, av+cv)
	})
	defer add.Release(g)

	conv := convert.FuncOf2(convert.Int, convert.Int, convert.Int)
	var f *convert.Func2[int, int, int]
	if !conv.FromHost(g, add, &f) {
		b.Fatalf("bind failed: %v", rt.Err(g))
	}
	defer f.Close(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Call(g, 2, 3); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Iterator bridge ---

func BenchmarkIter_Drain100(b *testing.B) {
	elems := make([]int, 100)
	for i := range elems {
		elems[i] = i
	}
	h := seq.Share(elems)
	defer h.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := seq.NewIter(h)
		for it.Next() != nil {
		}
	}
}

// --- Message bridge ---

func BenchmarkMessage_RoundTrip(b *testing.B) {
	rt := object.New()
	defer rt.Close()
	g := rt.Lock()
	defer g.Unlock()

	rt.RegisterMessageType("google.protobuf.Int64Value")
	conv := protomsg.MessageOf[*wrapperspb.Int64Value](protomsg.Global())
	in := wrapperspb.Int64(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := conv.ToHost(g, in, convert.Policy{})
		var out *wrapperspb.Int64Value
		conv.FromHost(g, o, &out)
		o.Release(g)
	}
}
