package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Repr renders a debugging representation of o. It is total and never
// touches the pending error. Cyclic containers render as "...".
func (rt *Runtime) Repr(g *Guard, o *Object) string {
	rt.check(g)
	o.alive()
	var sb strings.Builder
	rt.repr(g, o, &sb, make(map[*Object]bool))
	return sb.String()
}

func (rt *Runtime) repr(g *Guard, o *Object, sb *strings.Builder, seen map[*Object]bool) {
	switch o.kind {
	case KindNone:
		sb.WriteString("None")
	case KindBool:
		if o.i != 0 {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindInt:
		if o.big != nil {
			sb.WriteString(o.big.String())
		} else {
			sb.WriteString(strconv.FormatInt(o.i, 10))
		}
	case KindFloat:
		s := strconv.FormatFloat(o.f, 'g', -1, 64)
		sb.WriteString(s)
		if !strings.ContainsAny(s, ".eEnN") {
			sb.WriteString(".0")
		}
	case KindStr:
		sb.WriteString(strconv.Quote(o.s))
	case KindBytes:
		sb.WriteString("b")
		sb.WriteString(strconv.Quote(string(o.b)))
	case KindList:
		rt.reprSeq(g, o, sb, seen, "[", "]", false)
	case KindTuple:
		rt.reprSeq(g, o, sb, seen, "(", ")", true)
	case KindDict:
		if seen[o] {
			sb.WriteString("{...}")
			return
		}
		seen[o] = true
		sb.WriteString("{")
		for i, e := range o.tab.entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			rt.repr(g, e.key, sb, seen)
			sb.WriteString(": ")
			rt.repr(g, e.val, sb, seen)
		}
		sb.WriteString("}")
		delete(seen, o)
	case KindSet:
		if o.tab.len() == 0 {
			sb.WriteString("set()")
			return
		}
		if seen[o] {
			sb.WriteString("{...}")
			return
		}
		seen[o] = true
		sb.WriteString("{")
		for i, e := range o.tab.entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			rt.repr(g, e.key, sb, seen)
		}
		sb.WriteString("}")
		delete(seen, o)
	case KindFunc:
		fmt.Fprintf(sb, "<function %s/%d>", o.fn.name, o.fn.arity)
	case KindIter:
		sb.WriteString("<iterator>")
	case KindMessage:
		fmt.Fprintf(sb, "<message '%s' (%d bytes)>", o.msg.name, len(o.msg.raw))
	}
}

func (rt *Runtime) reprSeq(g *Guard, o *Object, sb *strings.Builder, seen map[*Object]bool, lb, rb string, trailingOne bool) {
	if seen[o] {
		sb.WriteString(lb + "..." + rb)
		return
	}
	seen[o] = true
	sb.WriteString(lb)
	for i, el := range o.seq {
		if i > 0 {
			sb.WriteString(", ")
		}
		rt.repr(g, el, sb, seen)
	}
	if trailingOne && len(o.seq) == 1 {
		sb.WriteString(",")
	}
	sb.WriteString(rb)
	delete(seen, o)
}
