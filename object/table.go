package object

import "bytes"

// table is the insertion-ordered backing store for dict and set
// objects. Entries are append-only; replacing a key keeps its slot.
type table struct {
	entries []tableEntry
	index   map[int64][]int
}

type tableEntry struct {
	key  *Object
	val  *Object // nil for set members
	hash int64
}

func newTable() *table {
	return &table{index: make(map[int64][]int)}
}

func (t *table) len() int { return len(t.entries) }

// lookup returns the entry index for k under precomputed hash h,
// or -1.
func (t *table) lookup(g *Guard, k *Object, h int64) int {
	for _, i := range t.index[h] {
		if equalKey(g, t.entries[i].key, k) {
			return i
		}
	}
	return -1
}

// set inserts or replaces. Key and value are borrowed; the table
// retains its own references.
func (t *table) set(g *Guard, k, v *Object, h int64) {
	if i := t.lookup(g, k, h); i >= 0 {
		old := t.entries[i].val
		t.entries[i].val = nil
		if v != nil {
			t.entries[i].val = v.Retain(g)
		}
		if old != nil {
			old.Release(g)
		}
		return
	}
	e := tableEntry{key: k.Retain(g), hash: h}
	if v != nil {
		e.val = v.Retain(g)
	}
	t.entries = append(t.entries, e)
	t.index[h] = append(t.index[h], len(t.entries)-1)
}

func (t *table) release(g *Guard) {
	for _, e := range t.entries {
		e.key.Release(g)
		if e.val != nil {
			e.val.Release(g)
		}
	}
	t.entries = nil
	t.index = nil
}

// equalKey is the equality used by dict keys and set members:
// identity first, then same-kind payload equality. It never touches
// the pending error.
func equalKey(g *Guard, a, b *Object) bool {
	if a == b {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInt:
		if (a.big == nil) != (b.big == nil) {
			return false
		}
		if a.big == nil {
			return a.i == b.i
		}
		return a.big.Cmp(b.big) == 0
	case KindFloat:
		return a.f == b.f
	case KindStr:
		return a.s == b.s
	case KindBytes:
		return bytes.Equal(a.b, b.b)
	case KindTuple:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !equalKey(g, a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMessage:
		return a.msg.name == b.msg.name && bytes.Equal(a.msg.raw, b.msg.raw)
	}
	// Remaining kinds compare by identity only.
	return false
}
