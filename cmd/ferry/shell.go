package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ferryrt/ferry/internal/lit"
	"github.com/ferryrt/ferry/object"
)

// shell is one interactive session over a private runtime: a variable
// table plus the builtins that map onto the runtime's protocol
// operations. Variables hold owned references until reassigned,
// deleted, or the shell closes.
type shell struct {
	rt    *object.Runtime
	vars  map[string]*object.Object
	order []string
}

func newShell(logger *zap.Logger) *shell {
	return &shell{
		rt:   object.New(object.WithLogger(logger)),
		vars: make(map[string]*object.Object),
	}
}

// Close releases every variable and shuts the runtime down. A non-nil
// error means objects leaked.
func (s *shell) Close() error {
	g := s.rt.Lock()
	for _, name := range s.order {
		s.vars[name].Release(g)
	}
	s.vars = nil
	s.order = nil
	g.Unlock()
	return s.rt.Close()
}

// Live reports the number of live objects in the shell's runtime.
func (s *shell) Live() int64 { return s.rt.Live() }

// Vars returns the bound variable names in binding order.
func (s *shell) Vars() []string { return s.order }

// resolve is the identifier hook for the literal parser: variables
// come back retained, like any other owned parse result.
func (s *shell) resolve(g *object.Guard) lit.Resolver {
	return func(name string) (*object.Object, bool) {
		o, ok := s.vars[name]
		if !ok {
			return nil, false
		}
		return o.Retain(g), true
	}
}

// Eval evaluates one input line and returns its printable output,
// which is empty for assignments. lit.ErrIncomplete passes through so
// the REPL can prompt for continuation lines.
func (s *shell) Eval(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if name, ok := strings.CutPrefix(line, "del "); ok {
		return "", s.delete(strings.TrimSpace(name))
	}

	g := s.rt.Lock()
	defer g.Unlock()

	if name, rest, ok := splitAssign(line); ok {
		o, err := s.evalExpr(g, rest)
		if err != nil {
			return "", err
		}
		if o == nil {
			o = s.rt.None()
		}
		s.bind(g, name, o)
		return "", nil
	}

	o, err := s.evalExpr(g, line)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "StopIteration", nil
	}
	out := s.rt.Repr(g, o)
	o.Release(g)
	return out, nil
}

// bind stores an owned reference under name, releasing any previous
// binding.
func (s *shell) bind(g *object.Guard, name string, o *object.Object) {
	if old, ok := s.vars[name]; ok {
		old.Release(g)
	} else {
		s.order = append(s.order, name)
	}
	s.vars[name] = o
}

func (s *shell) delete(name string) error {
	if !isIdent(name) {
		return fmt.Errorf("del expects a variable name")
	}
	o, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("name '%s' is not defined", name)
	}
	g := s.rt.Lock()
	o.Release(g)
	g.Unlock()
	delete(s.vars, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// evalExpr evaluates a builtin call or a literal expression to a new
// owned reference. A nil object with a nil error is an exhausted
// next().
func (s *shell) evalExpr(g *object.Guard, expr string) (*object.Object, error) {
	expr = strings.TrimSpace(expr)
	if name, inner, ok := splitCall(expr); ok {
		if want, known := builtins[name]; known {
			return s.builtin(g, name, want, inner)
		}
	}
	return lit.Parse(g, expr, s.resolve(g))
}

// splitAssign recognizes "name = expr", rejecting "==" so comparisons
// stay expressions. An empty right side is allowed through; the parser
// reports it incomplete, which keeps REPL continuation working.
func splitAssign(line string) (name, rest string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", "", false
	}
	if i+1 < len(line) && line[i+1] == '=' {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	if !isIdent(name) {
		return "", "", false
	}
	return name, line[i+1:], true
}

// splitCall recognizes "name( inner )" spanning the whole line.
func splitCall(line string) (name, inner string, ok bool) {
	i := strings.IndexByte(line, '(')
	if i <= 0 || !strings.HasSuffix(line, ")") {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	if !isIdent(name) {
		return "", "", false
	}
	return name, line[i+1 : len(line)-1], true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var builtins = map[string]int{
	"len":  1,
	"hash": 1,
	"bool": 1,
	"repr": 1,
	"refs": 1,
	"iter": 1,
	"next": 1,
	"cmp":  2,
	"err":  0,
}

// builtin dispatches one protocol operation and returns its result as
// a new owned object. The argument list parses as a bracketed literal
// so nested commas need no special handling.
func (s *shell) builtin(g *object.Guard, name string, want int, inner string) (*object.Object, error) {
	// refs on a bare variable reads the table directly, so the count
	// is not disturbed by the temporary parse reference.
	if name == "refs" {
		if v, ok := s.vars[strings.TrimSpace(inner)]; ok {
			return s.rt.NewInt(g, v.Refs()), nil
		}
	}

	var args []*object.Object
	if strings.TrimSpace(inner) != "" {
		list, err := lit.Parse(g, "["+inner+"]", s.resolve(g))
		if err != nil {
			return nil, err
		}
		defer list.Release(g)
		n, _ := s.rt.SeqLen(g, list)
		for i := 0; i < n; i++ {
			el, _ := s.rt.SeqAt(g, list, i)
			args = append(args, el)
		}
	}
	if len(args) != want {
		return nil, fmt.Errorf("%s() takes %d argument(s) (%d given)", name, want, len(args))
	}

	fail := func() (*object.Object, error) {
		if e := s.rt.TakeErr(g); e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s() failed", name)
	}

	switch name {
	case "len":
		n, ok := s.rt.Len(g, args[0])
		if !ok {
			return fail()
		}
		return s.rt.NewInt(g, int64(n)), nil
	case "hash":
		h, ok := s.rt.Hash(g, args[0])
		if !ok {
			return fail()
		}
		return s.rt.NewInt(g, h), nil
	case "bool":
		return s.rt.Bool(s.rt.Truth(g, args[0])), nil
	case "repr":
		return s.rt.NewStr(g, s.rt.Repr(g, args[0])), nil
	case "refs":
		// Parse temporaries inflate the count by one per hold; a
		// bare variable took the fast path above.
		return s.rt.NewInt(g, args[0].Refs()), nil
	case "iter":
		it, ok := s.rt.Iter(g, args[0])
		if !ok {
			return fail()
		}
		return it, nil
	case "next":
		el := s.rt.Next(g, args[0])
		if el == nil && s.rt.Failed(g) {
			return fail()
		}
		return el, nil
	case "cmp":
		c, ok := s.rt.Compare(g, args[0], args[1])
		if !ok {
			return fail()
		}
		return s.rt.NewInt(g, int64(c)), nil
	case "err":
		if msg := s.rt.ErrString(g); msg != "" {
			return s.rt.NewStr(g, msg), nil
		}
		return s.rt.None(), nil
	}
	return nil, fmt.Errorf("unknown builtin %q", name)
}
