package object

// Message records are the host side of the foreign-message bridge: an
// opaque serialized payload tagged with a fully-qualified type name.
// The runtime keeps its own registry of known type names, separate
// from any native registry, mirroring a managed runtime that has
// imported a set of record classes.

// RegisterMessageType makes a fully-qualified type name constructible
// in this runtime. Safe for concurrent use; registration is expected
// to happen at setup time.
func (rt *Runtime) RegisterMessageType(name string) {
	rt.msgMu.Lock()
	defer rt.msgMu.Unlock()
	rt.msgTypes[name] = struct{}{}
}

// MessageRegistered reports whether name is registered in this
// runtime.
func (rt *Runtime) MessageRegistered(name string) bool {
	rt.msgMu.RLock()
	defer rt.msgMu.RUnlock()
	_, ok := rt.msgTypes[name]
	return ok
}

// NewMessage creates a message record of a registered type holding a
// copy of raw. An unregistered name fails with a type error.
func (rt *Runtime) NewMessage(g *Guard, name string, raw []byte) (*Object, bool) {
	rt.check(g)
	if !rt.MessageRegistered(name) {
		rt.Fail(g, ErrType, "message type '%s' not registered in host runtime", name)
		return nil, false
	}
	o := rt.alloc(g, KindMessage)
	o.msg = &messageValue{name: name, raw: append([]byte(nil), raw...)}
	return o, true
}

// MessageName returns the record's fully-qualified type name.
func (rt *Runtime) MessageName(g *Guard, m *Object) (string, bool) {
	rt.check(g)
	m.alive()
	if m.kind != KindMessage {
		rt.Fail(g, ErrType, "'%s' object is not a message", m.TypeName())
		return "", false
	}
	return m.msg.name, true
}

// MessageBytes serializes the record. The result is always a fresh
// copy; it never aliases the record's own buffer.
func (rt *Runtime) MessageBytes(g *Guard, m *Object) ([]byte, bool) {
	rt.check(g)
	m.alive()
	if m.kind != KindMessage {
		rt.Fail(g, ErrType, "'%s' object is not a message", m.TypeName())
		return nil, false
	}
	return append([]byte(nil), m.msg.raw...), true
}

// MessageMerge appends raw to the record's payload. Concatenation is
// merge for length-delimited record encodings, which is the only
// interpretation the host side needs.
func (rt *Runtime) MessageMerge(g *Guard, m *Object, raw []byte) bool {
	rt.check(g)
	m.alive()
	if m.kind != KindMessage {
		return rt.Fail(g, ErrType, "'%s' object is not a message", m.TypeName())
	}
	m.msg.raw = append(m.msg.raw, raw...)
	return true
}
