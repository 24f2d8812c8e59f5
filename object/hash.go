package object

import (
	"encoding/binary"
	"hash/maphash"
	"math"
)

// Hash tag bytes keep distinct kinds from colliding on equal payload
// bytes.
const (
	hashTagNone = iota + 1
	hashTagBool
	hashTagInt
	hashTagBigInt
	hashTagFloat
	hashTagStr
	hashTagBytes
	hashTagTuple
	hashTagMessage
	hashTagIdentity
)

// Hash returns the object's hash under the runtime seed. Mutable
// containers are unhashable and fail with a type error. The value -1
// is reserved for failure and remaps to -2.
func (rt *Runtime) Hash(g *Guard, o *Object) (int64, bool) {
	rt.check(g)
	o.alive()
	var h maphash.Hash
	h.SetSeed(rt.seed)
	if !rt.hashInto(g, o, &h) {
		return -1, false
	}
	v := int64(h.Sum64())
	if v == -1 {
		v = -2
	}
	return v, true
}

func (rt *Runtime) hashInto(g *Guard, o *Object, h *maphash.Hash) bool {
	switch o.kind {
	case KindNone:
		h.WriteByte(hashTagNone)
	case KindBool:
		h.WriteByte(hashTagBool)
		h.WriteByte(byte(o.i))
	case KindInt:
		if o.big != nil {
			h.WriteByte(hashTagBigInt)
			h.WriteByte(byte(o.big.Sign() + 1))
			h.Write(o.big.Bytes())
		} else {
			h.WriteByte(hashTagInt)
			writeUint64(h, uint64(o.i))
		}
	case KindFloat:
		f := o.f
		if f == 0 {
			f = 0 // fold -0.0 into +0.0
		}
		h.WriteByte(hashTagFloat)
		writeUint64(h, math.Float64bits(f))
	case KindStr:
		h.WriteByte(hashTagStr)
		h.WriteString(o.s)
	case KindBytes:
		h.WriteByte(hashTagBytes)
		h.Write(o.b)
	case KindTuple:
		h.WriteByte(hashTagTuple)
		writeUint64(h, uint64(len(o.seq)))
		for _, el := range o.seq {
			if !rt.hashInto(g, el, h) {
				return false
			}
		}
	case KindMessage:
		h.WriteByte(hashTagMessage)
		h.WriteString(o.msg.name)
		h.WriteByte(0)
		h.Write(o.msg.raw)
	case KindFunc, KindIter:
		h.WriteByte(hashTagIdentity)
		writeUint64(h, o.seqno)
	default:
		rt.Fail(g, ErrType, "unhashable type: '%s'", o.TypeName())
		return false
	}
	return true
}

func writeUint64(h *maphash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
