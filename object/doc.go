// Package object implements a small, reference-counted dynamic object
// runtime: the "host" side of the ferry conversion boundary.
//
// # Overview
//
// A Runtime owns a heap of dynamically typed Objects (none, bool, int,
// float, str, bytes, list, tuple, dict, set, func, iterator, message),
// a single pending-error slot, and one exclusive-access token. Every
// operation that touches an Object takes a *Guard, the value returned
// by Runtime.Lock, so possession of the token is visible in signatures
// rather than implied by a calling convention.
//
// # Ownership
//
// Objects are manually reference counted. Constructors return a new
// owned reference (count 1) that the caller must Release. Functions
// that accept an Object borrow it unless documented otherwise;
// functions that return one return a fresh owned reference. Container
// writes borrow: the container retains its own reference internally
// and the caller keeps (and still releases) its own.
//
// # Basic usage
//
//	rt := object.New()
//	defer rt.Close()
//
//	g := rt.Lock()
//	defer g.Unlock()
//
//	n := rt.NewInt(g, 42)
//	defer n.Release(g)
//
// # Errors
//
// Failing operations set the runtime's pending error and return their
// documented failure value. Success never leaves a pending error
// behind. The pending error is inspected with Err, consumed with
// TakeErr, and discarded with ClearErr.
package object
