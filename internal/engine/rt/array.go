package rt

import (
	"encoding/binary"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// TypeArrayHeader is the heap tag for a JsArray's length/store header.
const TypeArrayHeader uint32 = 4

// TypeArrayStore is the heap tag for a JsArray's dense element backing
// array, a flat run of Value slots like a scope's locals.
const TypeArrayStore uint32 = 5

const (
	arrWordLength   = 0
	arrWordElements = 1
	arrWordCount    = 2
)

const arrHeaderSize = arrWordCount * 8

// maxDenseLength is the index at which callers store array elements as
// ordinary property names on the array object's hash table rather than
// in the dense backing store. Array itself does not check it: Set and
// Push grow the dense store for any index they are given. (ECMA-262
// §15.4 never mandates a dense representation; this
// cutoff only keeps a sparse array's backing store from growing
// unboundedly whenever a script sets a single very large index).
const maxDenseLength = 1 << 20

// Array is a handle to a heap-allocated dense array store: a small
// fixed header (logical length, backing-store address) plus the Value
// array itself.
type Array struct {
	addr gc.Address
}

// NewArray allocates an empty array with room for at least
// initialCapacity elements before its first growth.
func NewArray(h *gc.Heap, initialCapacity int) (Array, error) {
	if initialCapacity < 4 {
		initialCapacity = 4
	}
	elemsAddr, err := h.AllocArrayRaw(TypeArrayStore, valueWordSize, initialCapacity)
	if err != nil {
		return Array{}, err
	}
	// The element store isn't reachable from any root yet; pin it across
	// the header allocation, which can trigger a collection.
	scope := h.NewLocalScope()
	defer scope.Close()
	pinnedElems := scope.NewLocal(elemsAddr)
	hdrAddr, err := h.AllocRaw(TypeArrayHeader, arrHeaderSize)
	if err != nil {
		return Array{}, err
	}
	a := Array{addr: hdrAddr}
	space := h.Space()
	a.setLength(space, 0)
	a.setElementsAddr(space, *pinnedElems)
	return a, nil
}

// FromArrayAddr wraps an existing array header address.
func FromArrayAddr(addr gc.Address) Array { return Array{addr: addr} }

func (a Array) Addr() gc.Address { return a.addr }

func (a Array) Length(space []byte) uint32 {
	return binary.LittleEndian.Uint32(space[a.addr+arrWordLength*8:])
}

func (a Array) setLength(space []byte, n uint32) {
	binary.LittleEndian.PutUint32(space[a.addr+arrWordLength*8:], n)
}

func (a Array) elementsAddr(space []byte) gc.Address {
	return gc.Address(binary.LittleEndian.Uint32(space[a.addr+arrWordElements*8:]))
}

func (a Array) setElementsAddr(space []byte, addr gc.Address) {
	binary.LittleEndian.PutUint32(space[a.addr+arrWordElements*8:], uint32(addr))
}

func (a Array) capacity(space []byte) int {
	return gc.PayloadSize(space, a.elementsAddr(space)) / valueWordSize
}

// Get returns the element at index, or Undefined for an index beyond
// the current length (a hole, indistinguishable here from an
// explicitly-assigned undefined — see Design Notes on array holes).
func (a Array) Get(space []byte, index uint32) Value {
	if index >= a.Length(space) {
		return Undefined
	}
	elems := a.elementsAddr(space)
	return decodeValue(valueSlot(space, elems, int(index)))
}

// Set writes index, growing the dense store if needed and extending
// length to index+1 when index is at or past the current length.
// Callers are responsible for routing indices past maxDenseLength to
// the object's ordinary property table instead of here.
func (a Array) Set(h *gc.Heap, index uint32, v Value) error {
	space := h.Space()
	if int(index) >= a.capacity(space) {
		if err := a.grow(h, int(index)+1); err != nil {
			return err
		}
		space = h.Space()
	}
	elems := a.elementsAddr(space)
	encodeValue(valueSlot(space, elems, int(index)), v)
	if index >= a.Length(space) {
		a.setLength(space, index+1)
	}
	return nil
}

// Push appends v at the current length and returns the new length.
func (a Array) Push(h *gc.Heap, v Value) (uint32, error) {
	n := a.Length(h.Space())
	if err := a.Set(h, n, v); err != nil {
		return 0, err
	}
	return n + 1, nil
}

// Pop removes and returns the last element, or Undefined if empty.
func (a Array) Pop(h *gc.Heap) Value {
	space := h.Space()
	n := a.Length(space)
	if n == 0 {
		return Undefined
	}
	v := a.Get(space, n-1)
	elems := a.elementsAddr(space)
	encodeValue(valueSlot(space, elems, int(n-1)), Undefined)
	a.setLength(space, n-1)
	return v
}

// SetLength implements the truncating/extending half of ECMA-262
// §15.4.5.2's array length setter: truncation clears elements at and
// beyond the new length; extension leaves newly-exposed slots as holes.
func (a Array) SetLength(h *gc.Heap, newLen uint32) error {
	space := h.Space()
	old := a.Length(space)
	if newLen < old {
		elems := a.elementsAddr(space)
		for i := newLen; i < old; i++ {
			encodeValue(valueSlot(space, elems, int(i)), Undefined)
		}
		a.setLength(space, newLen)
		return nil
	}
	if int(newLen) > a.capacity(space) {
		if err := a.grow(h, int(newLen)); err != nil {
			return err
		}
		space = h.Space()
	}
	a.setLength(space, newLen)
	return nil
}

// grow reallocates the dense store at (at least) double its current
// capacity. The old store's address is pinned via a local handle across
// the allocation, since AllocArrayRaw can itself trigger a collection
// that would relocate it before the copy loop below runs.
func (a Array) grow(h *gc.Heap, minCapacity int) error {
	space := h.Space()
	oldLen := int(a.Length(space))
	newCap := a.capacity(space) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}

	scope := h.NewLocalScope()
	defer scope.Close()
	pinned := scope.NewLocal(a.elementsAddr(space))

	newElems, err := h.AllocArrayRaw(TypeArrayStore, valueWordSize, newCap)
	if err != nil {
		return err
	}
	space = h.Space()
	oldElems := *pinned
	for i := 0; i < oldLen; i++ {
		v := decodeValue(valueSlot(space, oldElems, i))
		encodeValue(valueSlot(space, newElems, i), v)
	}
	a.setElementsAddr(space, newElems)
	return nil
}

// WalkElement is called by the concrete Walker for each word of a
// TypeArrayStore array. Every two-word pair is a Value slot (tag byte
// then payload), the same 16-byte encoding a scope's locals use, so the
// pointer-ness test mirrors scope.go's layout.
func WalkElement(space []byte, obj gc.Address, index int) gc.WalkResult {
	if index%2 == 1 {
		tagWordAddr := obj + gc.Address((index-1)*8)
		switch Type(space[tagWordAddr]) {
		case TypeString, TypeObject, TypeIterator, TypeScope:
			return gc.WalkPointer
		default:
			return gc.WalkSkip
		}
	}
	return gc.WalkSkip
}
