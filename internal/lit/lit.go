// Package lit parses shell literal expressions into host objects. The
// accepted grammar mirrors the runtime's repr output: ints, floats,
// quoted strings and byte strings, lists, tuples, dicts, sets, and the
// None/True/False singletons, so anything the shell prints can be
// pasted back in.
package lit

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ferryrt/ferry/object"
)

// ErrIncomplete marks input that ends inside an open construct. The
// shell treats it as a continuation prompt, not a failure.
var ErrIncomplete = errors.New("incomplete input")

// Resolver maps a bare identifier to a new owned reference. Returning
// false reports the name as unbound.
type Resolver func(name string) (*object.Object, bool)

// Parse evaluates a single literal expression into a new owned object.
// Input after the expression is an error.
func Parse(g *object.Guard, src string, resolve Resolver) (*object.Object, error) {
	p := &parser{g: g, rt: g.Runtime(), src: src, resolve: resolve}
	o, err := p.value()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos < len(p.src) {
		o.Release(g)
		return nil, p.errorf("trailing input after expression")
	}
	return o, nil
}

type parser struct {
	g       *object.Guard
	rt      *object.Runtime
	src     string
	pos     int
	resolve Resolver
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("col %d: %s", p.pos+1, fmt.Sprintf(format, args...))
}

// pendingErr converts a failed runtime operation into a native parse
// error, consuming the pending error.
func (p *parser) pendingErr() error {
	if e := p.rt.TakeErr(p.g); e != nil {
		return e
	}
	return errors.New("error not set")
}

func (p *parser) space() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) value() (*object.Object, error) {
	p.space()
	if p.pos >= len(p.src) {
		return nil, ErrIncomplete
	}
	c := p.src[p.pos]
	switch {
	case c == '[':
		return p.list()
	case c == '(':
		return p.tuple()
	case c == '{':
		return p.dictOrSet()
	case c == '"' || c == '\'':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return p.rt.NewStr(p.g, s), nil
	case c == 'b' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '"' || p.src[p.pos+1] == '\''):
		p.pos++
		b, err := p.bytes()
		if err != nil {
			return nil, err
		}
		return p.rt.NewBytes(p.g, b), nil
	case c == '-' || c == '.' || c >= '0' && c <= '9':
		return p.number()
	default:
		return p.name()
	}
}

func (p *parser) list() (*object.Object, error) {
	p.pos++
	l := p.rt.NewList(p.g)
	for {
		p.space()
		if p.pos >= len(p.src) {
			l.Release(p.g)
			return nil, ErrIncomplete
		}
		if p.peek() == ']' {
			p.pos++
			return l, nil
		}
		el, err := p.value()
		if err != nil {
			l.Release(p.g)
			return nil, err
		}
		p.rt.ListAppend(p.g, l, el)
		el.Release(p.g)
		p.space()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		case 0:
			l.Release(p.g)
			return nil, ErrIncomplete
		default:
			l.Release(p.g)
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

// tuple also handles grouping: a single element with no comma is the
// element itself, as in (5).
func (p *parser) tuple() (*object.Object, error) {
	p.pos++
	var elems []*object.Object
	release := func() {
		for _, e := range elems {
			e.Release(p.g)
		}
	}
	sawComma := false
	for {
		p.space()
		if p.pos >= len(p.src) {
			release()
			return nil, ErrIncomplete
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		el, err := p.value()
		if err != nil {
			release()
			return nil, err
		}
		elems = append(elems, el)
		p.space()
		switch p.peek() {
		case ',':
			sawComma = true
			p.pos++
		case ')':
		case 0:
			release()
			return nil, ErrIncomplete
		default:
			release()
			return nil, p.errorf("expected ',' or ')'")
		}
	}
	if len(elems) == 1 && !sawComma {
		return elems[0], nil
	}
	t := p.rt.NewTuple(p.g, elems...)
	release()
	return t, nil
}

func (p *parser) dictOrSet() (*object.Object, error) {
	p.pos++
	p.space()
	if p.pos >= len(p.src) {
		return nil, ErrIncomplete
	}
	if p.peek() == '}' {
		p.pos++
		return p.rt.NewDict(p.g), nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.peek() == ':' {
		return p.dict(first)
	}
	return p.set(first)
}

// dict consumes the remainder of a dict display. k is the already
// parsed first key, owned by dict from here on.
func (p *parser) dict(k *object.Object) (*object.Object, error) {
	d := p.rt.NewDict(p.g)
	for {
		p.space()
		if p.peek() != ':' {
			k.Release(p.g)
			d.Release(p.g)
			if p.pos >= len(p.src) {
				return nil, ErrIncomplete
			}
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			k.Release(p.g)
			d.Release(p.g)
			return nil, err
		}
		ok := p.rt.DictSet(p.g, d, k, v)
		k.Release(p.g)
		v.Release(p.g)
		if !ok {
			d.Release(p.g)
			return nil, p.pendingErr()
		}
		p.space()
		switch p.peek() {
		case ',':
			p.pos++
			p.space()
			if p.pos >= len(p.src) {
				d.Release(p.g)
				return nil, ErrIncomplete
			}
			if p.peek() == '}' {
				p.pos++
				return d, nil
			}
			k, err = p.value()
			if err != nil {
				d.Release(p.g)
				return nil, err
			}
		case '}':
			p.pos++
			return d, nil
		case 0:
			d.Release(p.g)
			return nil, ErrIncomplete
		default:
			d.Release(p.g)
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

// set consumes the remainder of a set display. el is the already
// parsed first element.
func (p *parser) set(el *object.Object) (*object.Object, error) {
	s := p.rt.NewSet(p.g)
	for {
		ok := p.rt.SetAdd(p.g, s, el)
		el.Release(p.g)
		if !ok {
			s.Release(p.g)
			return nil, p.pendingErr()
		}
		p.space()
		switch p.peek() {
		case ',':
			p.pos++
			p.space()
			if p.pos >= len(p.src) {
				s.Release(p.g)
				return nil, ErrIncomplete
			}
			if p.peek() == '}' {
				p.pos++
				return s, nil
			}
			var err error
			el, err = p.value()
			if err != nil {
				s.Release(p.g)
				return nil, err
			}
		case '}':
			p.pos++
			return s, nil
		case 0:
			s.Release(p.g)
			return nil, ErrIncomplete
		default:
			s.Release(p.g)
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) str() (string, error) {
	q := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return sb.String(), nil
		case c == '\\':
			r, err := p.escape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		case c == '\n':
			return "", p.errorf("newline in string")
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) bytes() ([]byte, error) {
	q := p.src[p.pos]
	p.pos++
	buf := []byte{}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return buf, nil
		case c == '\\':
			b, err := p.escapeByte()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b)
		case c >= utf8.RuneSelf:
			return nil, p.errorf("non-ASCII character in bytes literal")
		case c == '\n':
			return nil, p.errorf("newline in string")
		default:
			buf = append(buf, c)
			p.pos++
		}
	}
	return nil, p.errorf("unterminated bytes literal")
}

func (p *parser) escape() (rune, error) {
	if p.pos+1 < len(p.src) && p.src[p.pos+1] == 'u' {
		p.pos += 2
		if p.pos+4 > len(p.src) {
			return 0, p.errorf("short unicode escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return 0, p.errorf("bad unicode escape")
		}
		p.pos += 4
		return rune(n), nil
	}
	b, err := p.escapeByte()
	return rune(b), err
}

func (p *parser) escapeByte() (byte, error) {
	p.pos++
	if p.pos >= len(p.src) {
		return 0, p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '\\':
		return '\\', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case '0':
		return 0, nil
	case 'x':
		if p.pos+2 > len(p.src) {
			return 0, p.errorf("short hex escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
		if err != nil {
			return 0, p.errorf("bad hex escape")
		}
		p.pos += 2
		return byte(n), nil
	}
	return 0, p.errorf("unknown escape '\\%c'", c)
}

func (p *parser) number() (*object.Object, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		if c == '.' {
			isFloat = true
			p.pos++
			continue
		}
		if c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			if n := p.peek(); n == '-' || n == '+' {
				p.pos++
			}
			continue
		}
		break
	}
	raw := p.src[start:p.pos]
	text := strings.ReplaceAll(raw, "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad float literal %q", raw)
		}
		return p.rt.NewFloat(p.g, f), nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return p.rt.NewInt(p.g, n), nil
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, p.errorf("bad int literal %q", raw)
	}
	return p.rt.NewBigInt(p.g, b), nil
}

func (p *parser) name() (*object.Object, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || p.pos > start && c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
		return nil, p.errorf("unexpected character %q", r)
	}
	word := p.src[start:p.pos]
	switch word {
	case "None":
		return p.rt.None(), nil
	case "True":
		return p.rt.True(), nil
	case "False":
		return p.rt.False(), nil
	case "set":
		p.space()
		if p.peek() == '(' {
			p.pos++
			p.space()
			if p.pos >= len(p.src) {
				return nil, ErrIncomplete
			}
			if p.peek() != ')' {
				return nil, p.errorf("set() accepts no arguments")
			}
			p.pos++
			return p.rt.NewSet(p.g), nil
		}
	}
	if p.resolve != nil {
		if o, ok := p.resolve(word); ok {
			return o, nil
		}
	}
	return nil, fmt.Errorf("name '%s' is not defined", word)
}
