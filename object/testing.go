package object

import "testing"

// NewTestRuntime returns a runtime that is closed via t.Cleanup. The
// close-time leak check is promoted to a test failure, so tests get
// reference-count verification for free.
func NewTestRuntime(t testing.TB, opts ...Option) *Runtime {
	t.Helper()
	rt := New(opts...)
	t.Cleanup(func() {
		if err := rt.Close(); err != nil {
			t.Errorf("runtime leak check: %v", err)
		}
	})
	return rt
}
