package convert

import "github.com/ferryrt/ferry/object"

// Conv pairs the two directions of a conversion for one native type.
// The zero value is unusable; build pairs from the package's scalar
// values and combinators, or from New.
type Conv[T any] struct {
	from func(g *object.Guard, v *object.Object, dst *T) bool
	into func(g *object.Guard, v T, pc Policy) *object.Object
}

// New builds a conversion pair from its two directions. from reads a
// borrowed host object into dst, returning false with a pending error
// on failure. into returns a new owned reference, or nil with a
// pending error.
func New[T any](
	from func(g *object.Guard, v *object.Object, dst *T) bool,
	into func(g *object.Guard, v T, pc Policy) *object.Object,
) Conv[T] {
	return Conv[T]{from: from, into: into}
}

// FromHost converts a host object into *dst. The input is borrowed:
// FromHost never claims the caller's reference. On failure it returns
// false and the runtime's pending error is set.
func (c Conv[T]) FromHost(g *object.Guard, v *object.Object, dst *T) bool {
	return c.from(g, v, dst)
}

// ToHost converts a native value into a new owned host object, with
// pc applied to the result. On failure it returns nil and the
// runtime's pending error is set.
func (c Conv[T]) ToHost(g *object.Guard, v T, pc Policy) *object.Object {
	return c.into(g, v, pc)
}

// takeErr fetches the pending error as a native error value. A
// missing error, which indicates a conversion that broke the failure
// contract, is reported as a runtime error rather than nil.
func takeErr(g *object.Guard) error {
	if e := g.Runtime().TakeErr(g); e != nil {
		return e
	}
	return &object.Error{Kind: object.ErrRuntime, Msg: "error not set"}
}
