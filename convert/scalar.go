package convert

import (
	"math"
	"math/big"

	"github.com/ferryrt/ferry/object"
)

// Prebuilt scalar pairs. Numeric FromHost follows the two-step
// narrowing discipline: the host value is read at the widest native
// width first, then range-checked against the destination.
var (
	Int   = signedConv[int]("int", math.MinInt, math.MaxInt)
	Int8  = signedConv[int8]("int8", math.MinInt8, math.MaxInt8)
	Int16 = signedConv[int16]("int16", math.MinInt16, math.MaxInt16)
	Int32 = signedConv[int32]("int32", math.MinInt32, math.MaxInt32)
	Int64 = signedConv[int64]("int64", math.MinInt64, math.MaxInt64)

	Uint   = unsignedConv[uint]("uint", math.MaxUint)
	Uint8  = unsignedConv[uint8]("uint8", math.MaxUint8)
	Uint16 = unsignedConv[uint16]("uint16", math.MaxUint16)
	Uint32 = unsignedConv[uint32]("uint32", math.MaxUint32)
	Uint64 = unsignedConv[uint64]("uint64", math.MaxUint64)
)

type signedInt interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsignedInt interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// hostInt64 reads a host int at the widest signed width. Bool is not
// an int here.
func hostInt64(g *object.Guard, v *object.Object) (int64, bool) {
	rt := g.Runtime()
	if v.Kind() != object.KindInt {
		rt.Fail(g, object.ErrType, "expecting int")
		return 0, false
	}
	if n, ok := v.AsInt64(); ok {
		return n, true
	}
	b, _ := v.AsBigInt()
	if b.Sign() > 0 {
		rt.Fail(g, object.ErrValue, "value too large for int64")
	} else {
		rt.Fail(g, object.ErrValue, "value too small for int64")
	}
	return 0, false
}

func signedConv[T signedInt](name string, min, max int64) Conv[T] {
	return Conv[T]{
		from: func(g *object.Guard, v *object.Object, dst *T) bool {
			n, ok := hostInt64(g, v)
			if !ok {
				return false
			}
			if n < min || n > max {
				return g.Runtime().Fail(g, object.ErrValue,
					"value %d out of range for %s [%d, %d]", n, name, min, max)
			}
			*dst = T(n)
			return true
		},
		into: func(g *object.Guard, v T, pc Policy) *object.Object {
			return pc.Apply(g, g.Runtime().NewInt(g, int64(v)))
		},
	}
}

func unsignedConv[T unsignedInt](name string, max uint64) Conv[T] {
	return Conv[T]{
		from: func(g *object.Guard, v *object.Object, dst *T) bool {
			rt := g.Runtime()
			if v.Kind() != object.KindInt {
				return rt.Fail(g, object.ErrType, "expecting int")
			}
			if n, ok := v.AsInt64(); ok {
				if n < 0 || uint64(n) > max {
					return rt.Fail(g, object.ErrValue,
						"value %d out of range for %s [0, %d]", n, name, max)
				}
				*dst = T(n)
				return true
			}
			b, _ := v.AsBigInt()
			if !b.IsUint64() || b.Uint64() > max {
				return rt.Fail(g, object.ErrValue,
					"value %d out of range for %s [0, %d]", b, name, max)
			}
			*dst = T(b.Uint64())
			return true
		},
		into: func(g *object.Guard, v T, pc Policy) *object.Object {
			return pc.Apply(g, g.Runtime().NewUint(g, uint64(v)))
		},
	}
}

// Float64 accepts host floats and promotes host ints; ints beyond
// float64 range fail.
var Float64 = Conv[float64]{
	from: func(g *object.Guard, v *object.Object, dst *float64) bool {
		f, ok := hostFloat64(g, v)
		if !ok {
			return false
		}
		*dst = f
		return true
	},
	into: func(g *object.Guard, v float64, pc Policy) *object.Object {
		return pc.Apply(g, g.Runtime().NewFloat(g, v))
	},
}

// Float32 narrows through float64 with an overflow check.
var Float32 = Conv[float32]{
	from: func(g *object.Guard, v *object.Object, dst *float32) bool {
		f, ok := hostFloat64(g, v)
		if !ok {
			return false
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return g.Runtime().Fail(g, object.ErrValue,
				"value %g out of range for float32", f)
		}
		*dst = float32(f)
		return true
	},
	into: func(g *object.Guard, v float32, pc Policy) *object.Object {
		return pc.Apply(g, g.Runtime().NewFloat(g, float64(v)))
	},
}

func hostFloat64(g *object.Guard, v *object.Object) (float64, bool) {
	rt := g.Runtime()
	switch v.Kind() {
	case object.KindFloat:
		f, _ := v.AsFloat()
		return f, true
	case object.KindInt:
		if n, ok := v.AsInt64(); ok {
			return float64(n), true
		}
		b, _ := v.AsBigInt()
		f, _ := new(big.Float).SetInt(b).Float64()
		if math.IsInf(f, 0) {
			rt.Fail(g, object.ErrValue, "int too large to convert to float")
			return 0, false
		}
		return f, true
	}
	rt.Fail(g, object.ErrType, "expecting float")
	return 0, false
}

// Bool accepts only canonical host booleans, never general
// truthiness.
var Bool = Conv[bool]{
	from: func(g *object.Guard, v *object.Object, dst *bool) bool {
		if v.Kind() != object.KindBool {
			return g.Runtime().Fail(g, object.ErrType, "expecting bool")
		}
		*dst = v.IsTrue()
		return true
	},
	into: func(g *object.Guard, v bool, pc Policy) *object.Object {
		return pc.Apply(g, g.Runtime().Bool(v))
	},
}

// String reads host str as its UTF-8 text and host bytes as raw
// bytes. ToHost produces a byte string, so the Text policy decides
// whether the host sees text.
var String = Conv[string]{
	from: func(g *object.Guard, v *object.Object, dst *string) bool {
		switch v.Kind() {
		case object.KindStr:
			s, _ := v.AsStr()
			*dst = s
			return true
		case object.KindBytes:
			b, _ := v.AsBytes()
			*dst = string(b)
			return true
		}
		return g.Runtime().Fail(g, object.ErrType, "expecting str")
	},
	into: func(g *object.Guard, v string, pc Policy) *object.Object {
		return pc.Apply(g, g.Runtime().NewBytes(g, []byte(v)))
	},
}

// Bytes is the byte-string pair, with the same dual str/bytes
// acceptance as String. FromHost always yields a fresh slice.
var Bytes = Conv[[]byte]{
	from: func(g *object.Guard, v *object.Object, dst *[]byte) bool {
		switch v.Kind() {
		case object.KindBytes:
			b, _ := v.AsBytes()
			*dst = append([]byte(nil), b...)
			return true
		case object.KindStr:
			s, _ := v.AsStr()
			*dst = []byte(s)
			return true
		}
		return g.Runtime().Fail(g, object.ErrType, "expecting bytes")
	},
	into: func(g *object.Guard, v []byte, pc Policy) *object.Object {
		return pc.Apply(g, g.Runtime().NewBytes(g, v))
	},
}

// Object is the pass-through pair for handle-typed slots. FromHost
// retains the value into the destination; ToHost retains it back out.
// Both directions hand the caller an owned reference.
var Object = Conv[*object.Object]{
	from: func(g *object.Guard, v *object.Object, dst **object.Object) bool {
		*dst = v.Retain(g)
		return true
	},
	into: func(g *object.Guard, v *object.Object, pc Policy) *object.Object {
		if v == nil {
			return pc.Apply(g, g.Runtime().None())
		}
		return pc.Apply(g, v.Retain(g))
	},
}
