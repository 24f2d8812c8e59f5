package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferryrt/ferry/internal/lit"
)

func newTestShell(t *testing.T) *shell {
	t.Helper()
	sh := newShell(zap.NewNop())
	t.Cleanup(func() {
		if err := sh.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return sh
}

func TestShellExpressions(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"int", "42", "42"},
		{"negative float", "-2.5", "-2.5"},
		{"string", `"hi"`, `"hi"`},
		{"list", "[1, 2, 3]", "[1, 2, 3]"},
		{"nested", "[(1, 2), {3: 4}]", "[(1, 2), {3: 4}]"},
		{"len of str", `len("abc")`, "3"},
		{"len of list", "len([1, 2])", "2"},
		{"bool empty", "bool([])", "False"},
		{"bool nonempty", "bool([0])", "True"},
		{"cmp", "cmp(1, 2)", "-1"},
		{"err clear", "err()", "None"},
	}
	sh := newTestShell(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sh.Eval(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestShellVariables(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Eval("x = [1, 2, 3]")
	require.NoError(t, err)

	out, err := sh.Eval("x")
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", out)

	out, err = sh.Eval("refs(x)")
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	out, err = sh.Eval("y = x")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = sh.Eval("refs(x)")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	_, err = sh.Eval("del y")
	require.NoError(t, err)

	out, err = sh.Eval("refs(x)")
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	_, err = sh.Eval("del y")
	assert.ErrorContains(t, err, "not defined")
}

func TestShellIteration(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Eval("it = iter([10, 20])")
	require.NoError(t, err)

	for _, want := range []string{"10", "20", "StopIteration", "StopIteration"} {
		out, err := sh.Eval("next(it)")
		require.NoError(t, err)
		assert.Equal(t, want, out)
	}
}

func TestShellErrors(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Eval("len(5)")
	assert.ErrorContains(t, err, "has no len()")

	_, err = sh.Eval("cmp(1)")
	assert.ErrorContains(t, err, "takes 2 argument(s)")

	_, err = sh.Eval("unbound")
	assert.ErrorContains(t, err, "not defined")

	_, err = sh.Eval("{[1]: 2}")
	assert.ErrorContains(t, err, "unhashable")
}

func TestShellIncomplete(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Eval("[1, 2,")
	assert.ErrorIs(t, err, lit.ErrIncomplete)

	out, err := sh.Eval("[1, 2,\n 3]")
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", out)
}

func TestEvalSourceMultiline(t *testing.T) {
	sh := newTestShell(t)

	out, err := evalSource(sh, "x = [1,\n 2]\nlen(x)\n", false)
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestShellCloseReleasesVariables(t *testing.T) {
	sh := newShell(zap.NewNop())
	_, err := sh.Eval("x = [1, 2]")
	require.NoError(t, err)
	require.NoError(t, sh.Close())
}
