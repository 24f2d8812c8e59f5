// Package ferry marshals values between statically typed Go and a
// dynamically typed, reference-counted object runtime.
//
// # Overview
//
// The [object] package is the host side: a small dynamic runtime whose
// values are opaque, reference-counted handles guarded by a single
// exclusive-access token. The [convert] package is the boundary: one
// FromHost/ToHost conversion pair per native type, composed from
// prebuilt scalar pairs and combinators for slices, maps, sets, tuples,
// optionals, pointers, unions, and callables.
//
// # Basic Usage
//
//	rt := object.New()
//	defer rt.Close()
//
//	g := rt.Lock()
//	defer g.Unlock()
//
//	// Native -> host: a new owned reference, or nil with a pending error.
//	conv := convert.SliceOf(convert.Int)
//	host := conv.ToHost(g, []int{1, 2, 3}, convert.Policy{})
//	defer host.Release(g)
//
//	// Host -> native: the input is borrowed; false means a pending error.
//	var back []int
//	conv.FromHost(g, host, &back)
//
// # Ownership
//
// Every function that returns a host object returns a new owned
// reference the caller must release; every function that receives one
// borrows it unless documented otherwise. Failure is always a
// false/nil return paired with a pending error on the runtime, and
// success never leaves one behind.
//
// See the [slots] package for protocol-slot result adapters, [seq] for
// shared native containers and their iterators, and [protomsg] for the
// protobuf record bridge.
package ferry
