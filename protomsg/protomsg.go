// Package protomsg bridges protobuf messages across the host boundary.
// Host message records carry a type name and an opaque serialized
// payload; crossing in either direction is a serialize/reparse round
// trip, so the two sides never share buffers or descriptor pools.
package protomsg

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/ferryrt/ferry/convert"
	"github.com/ferryrt/ferry/object"
)

// Registry resolves fully-qualified message names to native message
// types. It wraps any protoregistry-compatible resolver and only ever
// queries it.
type Registry struct {
	types protoregistry.MessageTypeResolver
}

// NewRegistry wraps a resolver, typically a *protoregistry.Types
// populated during setup.
func NewRegistry(types protoregistry.MessageTypeResolver) *Registry {
	return &Registry{types: types}
}

// Global returns the registry over the process-wide linked-in message
// types.
func Global() *Registry {
	return &Registry{types: protoregistry.GlobalTypes}
}

// Lookup returns a fresh, empty instance of the named message type.
func (r *Registry) Lookup(name string) (proto.Message, error) {
	mt, err := r.find(protoreflect.FullName(name))
	if err != nil {
		return nil, err
	}
	return mt.New().Interface(), nil
}

func (r *Registry) find(name protoreflect.FullName) (protoreflect.MessageType, error) {
	mt, err := r.types.FindMessageByName(name)
	if err != nil {
		return nil, fmt.Errorf("message type '%s' not registered", name)
	}
	return mt, nil
}

// MessageOf builds the conversion pair for a generated message type,
// reading the descriptor off M's zero value. Dynamic messages have no
// usable zero value; build their pair with MessageFor.
func MessageOf[M proto.Message](reg *Registry) convert.Conv[M] {
	var zero M
	return MessageFor(reg, zero)
}

// MessageFor builds the conversion pair around an explicit prototype.
// The prototype supplies the descriptor and is the allocation template
// for parsed results; it is never mutated.
func MessageFor[M proto.Message](reg *Registry, prototype M) convert.Conv[M] {
	refl := prototype.ProtoReflect()
	name := string(refl.Descriptor().FullName())

	from := func(g *object.Guard, v *object.Object, dst *M) bool {
		rt := g.Runtime()
		if v.Kind() != object.KindMessage {
			return rt.Fail(g, object.ErrType, "expecting %s message, got %s %s",
				name, v.TypeName(), rt.Repr(g, v))
		}
		recName, _ := rt.MessageName(g, v)
		if _, err := reg.find(protoreflect.FullName(recName)); err != nil {
			return rt.Fail(g, object.ErrType, "message type '%s' not registered", recName)
		}
		if recName != name {
			return rt.Fail(g, object.ErrType, "expecting %s message, got %s", name, recName)
		}
		raw, ok := rt.MessageBytes(g, v)
		if !ok {
			return false
		}
		m := refl.New().Interface().(M)
		opts := proto.UnmarshalOptions{Merge: true, AllowPartial: true}
		if err := opts.Unmarshal(raw, m); err != nil {
			return rt.Fail(g, object.ErrValue, "parse from serialization failed")
		}
		*dst = m
		return true
	}

	into := func(g *object.Guard, v M, pc convert.Policy) *object.Object {
		rt := g.Runtime()
		if any(v) == nil {
			rt.Fail(g, object.ErrValue, "message is nil")
			return nil
		}
		raw, err := proto.MarshalOptions{AllowPartial: true}.Marshal(v)
		if err != nil {
			rt.Fail(g, object.ErrValue, "message serialization failed")
			return nil
		}
		rec, ok := rt.NewMessage(g, name, nil)
		if !ok {
			return nil
		}
		if !rt.MessageMerge(g, rec, raw) {
			rec.Release(g)
			return nil
		}
		return pc.Apply(g, rec)
	}

	return convert.New(from, into)
}
