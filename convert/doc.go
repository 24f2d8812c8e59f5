// Package convert implements the bidirectional value-marshaling
// protocol between native Go values and host runtime objects.
//
// # Overview
//
// A [Conv] pairs the two directions of a conversion: FromHost reads a
// borrowed host object into a native destination, ToHost produces a
// new owned host object from a native value. Prebuilt pairs cover the
// scalars ([Int], [Uint8], [Float64], [Bool], [String], [Bytes], ...);
// combinators build pairs for aggregates ([SliceOf], [MapOf],
// [TupleOf], [OptionalOf]), sum types ([OneOf]), callables ([FuncOf1]
// and friends), and iterators ([IterOf]).
//
// # Basic Usage
//
//	rt := object.New()
//	g := rt.Lock()
//	defer g.Unlock()
//
//	o := convert.SliceOf(convert.Int).ToHost(g, []int{1, 2, 3}, convert.Policy{})
//	defer o.Release(g)
//
//	var back []int
//	if !convert.SliceOf(convert.Int).FromHost(g, o, &back) {
//	    log.Fatal(rt.ErrString(g))
//	}
//
// # Ownership and Errors
//
// FromHost never consumes its input. On failure it returns false and
// leaves the runtime's pending error set; the destination is
// unspecified unless the pair documents otherwise. ToHost returns a
// new owned reference, or nil with a pending error; it never returns
// a partially built aggregate. A successful conversion never leaves a
// pending error behind.
//
// # Policies
//
// A [Policy] is an opaque post-conversion step applied to ToHost
// results. The zero value passes values through; [PolicyFunc] wraps a
// transforming step, [Policies] builds an element-indexed node for
// aggregate shapes, and [Text] is the canonical bytes-to-text upgrade.
//
// # Callbacks
//
// [FuncOf1] and its siblings convert host callables into native
// function objects with two call forms: Call, which takes the guard
// the caller already holds, and Invoke, which acquires the token
// itself and escalates failures through the runtime's callback
// failure channel.
package convert
