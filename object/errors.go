package object

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrKind classifies a pending error.
type ErrKind uint8

const (
	ErrType ErrKind = iota
	ErrValue
	ErrIndex
	ErrKey
	ErrRuntime
)

var errKindNames = [...]string{
	ErrType:    "TypeError",
	ErrValue:   "ValueError",
	ErrIndex:   "IndexError",
	ErrKey:     "KeyError",
	ErrRuntime: "RuntimeError",
}

func (k ErrKind) String() string {
	if int(k) < len(errKindNames) {
		return errKindNames[k]
	}
	return "Error"
}

// Error is a host-runtime error. It is stored in the runtime's
// pending slot and doubles as a native Go error value.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Fail records a pending error, overwriting any previous one, and
// returns false so conversion code can fail in one statement.
func (rt *Runtime) Fail(g *Guard, kind ErrKind, format string, args ...any) bool {
	rt.check(g)
	rt.pending = &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	return false
}

// Failed reports whether an error is pending.
func (rt *Runtime) Failed(g *Guard) bool {
	rt.check(g)
	return rt.pending != nil
}

// Err returns the pending error without clearing it, or nil.
func (rt *Runtime) Err(g *Guard) *Error {
	rt.check(g)
	return rt.pending
}

// TakeErr returns the pending error and clears it, or nil.
func (rt *Runtime) TakeErr(g *Guard) *Error {
	rt.check(g)
	e := rt.pending
	rt.pending = nil
	return e
}

// ClearErr discards the pending error.
func (rt *Runtime) ClearErr(g *Guard) {
	rt.check(g)
	rt.pending = nil
}

// ErrString renders and clears the pending error. It returns the
// empty string when none is pending.
func (rt *Runtime) ErrString(g *Guard) string {
	if e := rt.TakeErr(g); e != nil {
		return e.Error()
	}
	return ""
}

// Unraisable logs and clears a pending error that has no propagation
// path, such as one raised during teardown.
func (rt *Runtime) Unraisable(g *Guard, context string) {
	e := rt.TakeErr(g)
	if e == nil {
		return
	}
	rt.logger.Warn("unraisable error",
		zap.String("context", context),
		zap.String("error", e.Error()),
	)
}

// FatalError is the panic payload used by FailurePanic escalation.
type FatalError struct {
	Context string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Escalate reports a failure that has no error return to travel
// through. The pending error, if any, is consumed. FailurePanic
// panics with a *FatalError; FailureFatal terminates the process
// through the logger.
func (rt *Runtime) Escalate(g *Guard, context string) {
	e := rt.TakeErr(g)
	if e == nil {
		e = &Error{Kind: ErrRuntime, Msg: "error not set"}
	}
	var err error = e
	rt.logger.Error("callback failure",
		zap.String("context", context),
		zap.Error(err),
	)
	if rt.failure == FailureFatal {
		rt.logger.Fatal("callback failure is fatal", zap.String("context", context))
	}
	panic(&FatalError{Context: context, Err: err})
}
