package rt

import (
	"encoding/binary"
	"math"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// valueWordSize is the size in bytes of one Value slot inside a heap-
// allocated array (a JsScope's item vector, or a dense array store's
// element storage): one byte for the type tag plus an 8-byte payload
// word, rounded up to a full machine word pair for simple indexing.
const valueWordSize = 16

func encodeValue(buf []byte, v Value) {
	buf[0] = byte(v.ty)
	switch v.ty {
	case TypeBoolean, TypeNumber:
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(v.num))
	default:
		binary.LittleEndian.PutUint32(buf[8:], uint32(v.addr))
	}
}

func decodeValue(buf []byte) Value {
	ty := Type(buf[0])
	switch ty {
	case TypeBoolean, TypeNumber:
		return Value{ty: ty, num: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))}
	case TypeUndefined, TypeNull:
		return Value{ty: ty}
	default:
		return Value{ty: ty, addr: gc.Address(binary.LittleEndian.Uint32(buf[8:]))}
	}
}

func valueSlot(space []byte, base gc.Address, index int) []byte {
	off := int(base) + index*valueWordSize
	return space[off : off+valueWordSize]
}
