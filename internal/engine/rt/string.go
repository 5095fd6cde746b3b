package rt

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// TypeStringData is the heap tag for a JsString's backing storage: a
// length-prefixed run of UTF-16 code units. ECMA-262 strings are
// sequences of 16-bit code units rather than Unicode scalar values, so
// a string can hold an unpaired surrogate that UTF-8 has no way to
// represent; keeping the backing store as raw UTF-16 avoids silently
// losing or replacing such values on a round trip.
const TypeStringData uint32 = 6

const strWordLength = 0
const strHeaderWords = 1
const strHeaderSize = strHeaderWords * 8

// JsString is a handle to a heap-allocated, immutable string. Strings
// are never mutated in place; every operation that would change a
// string's contents allocates a new one, matching ECMAScript's
// value-semantics for the String primitive.
type JsString struct {
	addr gc.Address
}

// NewString allocates a string holding s's UTF-16 encoding.
func NewString(h *gc.Heap, s string) (JsString, error) {
	units := utf16.Encode([]rune(s))
	addr, err := h.AllocRaw(TypeStringData, strHeaderSize+len(units)*2)
	if err != nil {
		return JsString{}, err
	}
	js := JsString{addr: addr}
	space := h.Space()
	binary.LittleEndian.PutUint32(space[addr+strWordLength*8:], uint32(len(units)))
	unitsOff := addr + strHeaderSize
	for i, u := range units {
		binary.LittleEndian.PutUint16(space[int(unitsOff)+i*2:], u)
	}
	return js, nil
}

// FromStringAddr wraps an existing string data address.
func FromStringAddr(addr gc.Address) JsString { return JsString{addr: addr} }

func (s JsString) Addr() gc.Address { return s.addr }

// Length returns the string's length in UTF-16 code units (ECMA-262
// §15.5.5.1 the `.length` property), not Unicode scalar values.
func (s JsString) Length(space []byte) int {
	return int(binary.LittleEndian.Uint32(space[s.addr+strWordLength*8:]))
}

// Units returns the string's raw UTF-16 code units.
func (s JsString) Units(space []byte) []uint16 {
	n := s.Length(space)
	out := make([]uint16, n)
	off := int(s.addr) + strHeaderSize
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(space[off+i*2:])
	}
	return out
}

// CharCodeAt returns the UTF-16 code unit at index, matching ECMA-262
// §15.5.4.5's String.prototype.charCodeAt; the caller must range-check
// against Length first (an out-of-range access returns NaN at the
// script level, not a panic, per spec).
func (s JsString) CharCodeAt(space []byte, index int) uint16 {
	off := int(s.addr) + strHeaderSize + index*2
	return binary.LittleEndian.Uint16(space[off:])
}

// Go returns the string's Go (UTF-8) representation, replacing any
// unpaired surrogate with the Unicode replacement character.
func (s JsString) Go(space []byte) string {
	return string(utf16.Decode(s.Units(space)))
}

// Equals reports whether two strings hold the same code unit sequence,
// the comparison ECMA-262 §11.9.6 uses for strict/same-value equality
// between two String values.
func (s JsString) Equals(space []byte, other JsString) bool {
	if s.addr == other.addr {
		return true
	}
	a, b := s.Units(space), other.Units(space)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
