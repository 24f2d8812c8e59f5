package convert

import (
	"unicode/utf8"

	"github.com/ferryrt/ferry/object"
)

// Policy is an opaque post-conversion step applied to ToHost results.
// The zero value passes values through unchanged. Policies are
// read-only: conversion code indexes into them but never mutates one.
type Policy struct {
	fn    func(g *object.Guard, o *object.Object) *object.Object
	elems []Policy
}

// PolicyFunc wraps a transforming step. fn consumes its input and
// returns a new owned reference, or nil with a pending error.
func PolicyFunc(fn func(g *object.Guard, o *object.Object) *object.Object) Policy {
	return Policy{fn: fn}
}

// Policies builds an element-indexed policy node for aggregate
// shapes: position i of the converted aggregate sees elems[i].
func Policies(elems ...Policy) Policy {
	return Policy{elems: elems}
}

// Apply runs the policy over o, consuming it. Pass-through policies
// and nil inputs return o unchanged.
func (pc Policy) Apply(g *object.Guard, o *object.Object) *object.Object {
	if pc.fn == nil || o == nil {
		return o
	}
	return pc.fn(g, o)
}

// Get returns the policy for element i. Indexing a pass-through
// policy, or past the declared elements, returns pass-through.
func (pc Policy) Get(i int) Policy {
	if i < 0 || i >= len(pc.elems) {
		return Policy{}
	}
	return pc.elems[i]
}

// Text upgrades byte strings to text. Str input passes through
// untouched; bytes must be valid UTF-8; any other kind is a type
// error. Like every policy step it consumes its input.
var Text = PolicyFunc(func(g *object.Guard, o *object.Object) *object.Object {
	rt := g.Runtime()
	if o.Kind() == object.KindStr {
		return o
	}
	if o.Kind() != object.KindBytes {
		rt.Fail(g, object.ErrType, "expecting bytes, got %s %s", o.TypeName(), rt.Repr(g, o))
		o.Release(g)
		return nil
	}
	b, _ := o.AsBytes()
	if !utf8.Valid(b) {
		rt.Fail(g, object.ErrValue, "invalid UTF-8 in byte string")
		o.Release(g)
		return nil
	}
	s := rt.NewStr(g, string(b))
	o.Release(g)
	return s
})
