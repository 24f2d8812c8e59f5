package convert

import "github.com/ferryrt/ferry/object"

// Case is one declared alternative of a union surface U. The
// conversion strategy is fixed by the constructor used: CaseOf
// converts directly, CaseOptional through Optional, CasePtr through
// the owning pointer. Alternatives must be assignable to U.
type Case[U any] struct {
	from func(g *object.Guard, v *object.Object, dst *U) bool
	owns func(v U) bool
	into func(g *object.Guard, v U, pc Policy) *object.Object
}

// CaseOf declares an alternative converted directly into a zero
// value of A.
func CaseOf[U any, A any](conv Conv[A]) Case[U] {
	return Case[U]{
		from: func(g *object.Guard, v *object.Object, dst *U) bool {
			var a A
			if !conv.FromHost(g, v, &a) {
				return false
			}
			*dst = any(a).(U)
			return true
		},
		owns: ownsType[U, A],
		into: intoType[U, A](conv),
	}
}

// CaseOptional declares an alternative converted through
// Optional[A], committing the payload on success. An absent payload
// (host None) matches no alternative and falls through.
func CaseOptional[U any, A any](conv Conv[A]) Case[U] {
	inner := OptionalOf(conv)
	return Case[U]{
		from: func(g *object.Guard, v *object.Object, dst *U) bool {
			var oa Optional[A]
			if !inner.FromHost(g, v, &oa) || !oa.Set {
				return false
			}
			*dst = any(oa.Value).(U)
			return true
		},
		owns: ownsType[U, A],
		into: intoType[U, A](conv),
	}
}

// CasePtr declares an alternative converted through the owning
// pointer, committing the pointee. Host None yields no pointee and
// falls through.
func CasePtr[U any, A any](conv Conv[A]) Case[U] {
	inner := PtrOf(conv)
	return Case[U]{
		from: func(g *object.Guard, v *object.Object, dst *U) bool {
			var p *A
			if !inner.FromHost(g, v, &p) || p == nil {
				return false
			}
			*dst = any(*p).(U)
			return true
		},
		owns: ownsType[U, A],
		into: intoType[U, A](conv),
	}
}

func ownsType[U any, A any](v U) bool {
	_, ok := any(v).(A)
	return ok
}

func intoType[U any, A any](conv Conv[A]) func(g *object.Guard, v U, pc Policy) *object.Object {
	return func(g *object.Guard, v U, pc Policy) *object.Object {
		a, _ := any(v).(A)
		return conv.ToHost(g, a, pc)
	}
}

// OneOf builds the pair for a union surface from its declared
// alternatives.
//
// FromHost tries the cases in declared order and commits the first
// that succeeds; the pending error of every failed attempt is cleared
// before the next, so only the terminal all-failed error is ever
// visible. ToHost dispatches on the dynamic type of the active value
// against the declared cases; type identity decides, never
// convertibility.
func OneOf[U any](cases ...Case[U]) Conv[U] {
	return Conv[U]{
		from: func(g *object.Guard, v *object.Object, dst *U) bool {
			rt := g.Runtime()
			for _, c := range cases {
				if c.from(g, v, dst) {
					return true
				}
				rt.ClearErr(g)
			}
			return rt.Fail(g, object.ErrType, "failed to convert to any union alternative")
		},
		into: func(g *object.Guard, v U, pc Policy) *object.Object {
			rt := g.Runtime()
			if any(v) == nil {
				rt.Fail(g, object.ErrValue, "union is valueless")
				return nil
			}
			for _, c := range cases {
				if c.owns(v) {
					return c.into(g, v, pc)
				}
			}
			rt.Fail(g, object.ErrType, "no union alternative for %T", any(v))
			return nil
		},
	}
}
