// Package slots adapts host protocol-slot results to native calling
// conventions. Every adapter consumes the value it is given, releasing
// it exactly once on success and failure paths alike, and signals
// failure through the runtime's pending error plus the slot's reserved
// return value.
package slots

import "github.com/ferryrt/ferry/object"

// Index validates i against the dynamic length of s and returns it,
// consuming s. An object without length support fails with a type
// error; an index outside [0, len) fails with an index error. Failure
// returns -1.
func Index(g *object.Guard, s *object.Object, i int) int {
	rt := g.Runtime()
	defer s.Release(g)
	n, ok := rt.Len(g, s)
	if !ok {
		rt.Fail(g, object.ErrType, "not a sequential object")
		return -1
	}
	if i < 0 || i >= n {
		rt.Fail(g, object.ErrIndex, "index out of range")
		return -1
	}
	return i
}

// Size converts a length-slot result to a native length, consuming
// res. Non-int results fail with a type error, negative lengths with
// a value error. Failure returns -1; a nil res reports the failure
// already pending.
func Size(g *object.Guard, res *object.Object) int {
	rt := g.Runtime()
	if res == nil {
		return -1
	}
	defer res.Release(g)
	if res.Kind() != object.KindInt {
		rt.Fail(g, object.ErrType, "length must be an integer")
		return -1
	}
	v, ok := res.AsInt64()
	if !ok {
		b, _ := res.AsBigInt()
		if b.Sign() < 0 {
			rt.Fail(g, object.ErrValue, "length must be non-negative")
		} else {
			rt.Fail(g, object.ErrValue, "value too large for int64")
		}
		return -1
	}
	if v < 0 {
		rt.Fail(g, object.ErrValue, "length must be non-negative")
		return -1
	}
	return int(v)
}

// Truth converts a truth-slot result to 0 or 1, consuming res. Only
// canonical booleans and ints are accepted; anything else fails with a
// type error and returns -1.
func Truth(g *object.Guard, res *object.Object) int {
	rt := g.Runtime()
	if res == nil {
		return -1
	}
	defer res.Release(g)
	switch res.Kind() {
	case object.KindBool, object.KindInt:
		if rt.Truth(g, res) {
			return 1
		}
		return 0
	}
	rt.Fail(g, object.ErrType, "truth result must be int or bool")
	return -1
}

// Hash converts a hash-slot result to a native hash, consuming res.
// Non-int results fail with a type error and return -1. Results beyond
// the int64 range are folded through the runtime's own hash instead of
// failing. A -1 result remaps to -2, keeping -1 reserved for failure.
func Hash(g *object.Guard, res *object.Object) int64 {
	rt := g.Runtime()
	if res == nil {
		return -1
	}
	defer res.Release(g)
	if res.Kind() != object.KindInt {
		rt.Fail(g, object.ErrType, "hash result must be an integer")
		return -1
	}
	if v, ok := res.AsInt64(); ok {
		if v == -1 {
			return -2
		}
		return v
	}
	h, ok := rt.Hash(g, res)
	if !ok {
		return -1
	}
	return h
}

// Cmp converts an ordering-slot result to a native comparison code,
// consuming res. Non-int results fail with a value error and return
// the sentinel -2, which no valid comparison produces.
func Cmp(g *object.Guard, res *object.Object) int {
	rt := g.Runtime()
	if res == nil {
		return -2
	}
	defer res.Release(g)
	v, ok := res.AsInt64()
	if !ok {
		rt.Fail(g, object.ErrValue, "ordering result must be an integer")
		return -2
	}
	return int(v)
}

// Ignore discards a slot result, consuming it. It returns -1 when res
// is nil or an error is pending, else 0.
func Ignore(g *object.Guard, res *object.Object) int {
	rt := g.Runtime()
	if res != nil {
		res.Release(g)
	}
	if res == nil || rt.Failed(g) {
		return -1
	}
	return 0
}
