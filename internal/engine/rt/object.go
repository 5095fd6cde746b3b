package rt

import (
	"encoding/binary"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// TypeObjectHeader is the heap tag for a JsObject's fixed header.
const TypeObjectHeader uint32 = 1

// Class identifies an object's [[Class]] internal property (ECMA-262
// §8.6.2), consulted by ToString/Object.prototype.toString and by a few
// internal algorithms (e.g. Date's hint resolution in ToPrimitive).
type Class uint8

const (
	ClassObject Class = iota
	ClassArray
	ClassFunction
	ClassDate
	ClassError
	ClassArguments
)

// Object header layout, 5 words:
//
//	word0: prototype (Value, 2 words: tag + payload)
//	word2: class (1 word, low byte) | callable flag (bit 8)
//	word3: property table address (Value-style object-address, or Null)
//	word4: array store address (Value-style object-address, or Null), only used when class==ClassArray
const (
	objWordPrototype0 = 0
	objWordPrototype1 = 1
	objWordClass      = 2
	objWordHash       = 3
	objWordArray      = 4
	objWordCount      = 5
)

const objHeaderSize = objWordCount * 8

// primitiveValueSlot is the reserved property name ToObject uses to
// stash a boxed primitive (ECMA-262's [[PrimitiveValue]] internal
// slot). The object header has no spare word generic enough to hold
// an arbitrary tagged Value (word 4 is only ever a GC pointer, per
// walkObjectHeader), so the existing property-table machinery is
// reused instead. By convention a name interner hands out small
// sequential integers starting at 0, so the top of the uint32 range is
// never produced for a script-level identifier; this is not enforced
// here and a custom interner that violates it would collide.
const primitiveValueSlot uint32 = 0xFFFFFFFF

const callableFlag = 1 << 8

// nonExtensibleFlag marks an object that can no longer gain new own
// properties (ECMA-262 §8.12.9's [[Extensible]], via PreventExtensions).
// Unset (the default for every object NewObject creates) means
// extensible, matching every object's initial state per ECMA-262 §15.
const nonExtensibleFlag = 1 << 9

// Object is a handle to a heap-allocated JsObject header.
type Object struct {
	addr gc.Address
}

// NewObject allocates a plain object with the given prototype (Null if
// none) and class.
func NewObject(h *gc.Heap, prototype Value, class Class) (Object, error) {
	addr, err := h.AllocRaw(TypeObjectHeader, objHeaderSize)
	if err != nil {
		return Object{}, err
	}
	o := Object{addr: addr}
	space := h.Space()
	o.setWord(space, objWordPrototype0, 0)
	encodeValue(space[o.wordAddr(objWordPrototype0):], prototype)
	binary.LittleEndian.PutUint64(space[o.wordAddr(objWordClass):], uint64(class))
	o.setWord(space, objWordHash, 0)
	o.setWord(space, objWordArray, 0)
	return o, nil
}

// NewArrayObject allocates a ClassArray object with its dense element
// store already attached, ready for GetElement/SetElement/Push/Pop.
func NewArrayObject(h *gc.Heap, prototype Value, initialCapacity int) (Object, error) {
	o, err := NewObject(h, prototype, ClassArray)
	if err != nil {
		return Object{}, err
	}

	// o isn't reachable from any root yet; pin it before the next
	// allocation, which can itself trigger a collection that would
	// otherwise treat o as garbage and never forward it.
	scope := h.NewLocalScope()
	defer scope.Close()
	pinned := scope.NewLocal(o.addr)

	arr, err := NewArray(h, initialCapacity)
	if err != nil {
		return Object{}, err
	}
	o.addr = *pinned
	o.setArrayAddr(h.Space(), arr.Addr())
	return o, nil
}

func (o Object) wordAddr(word int) gc.Address { return o.addr + gc.Address(word*8) }
func (o Object) setWord(space []byte, word int, v uint64) {
	binary.LittleEndian.PutUint64(space[o.wordAddr(word):], v)
}
func (o Object) getWord(space []byte, word int) uint64 {
	return binary.LittleEndian.Uint64(space[o.wordAddr(word):])
}

func (o Object) Addr() gc.Address { return o.addr }

func (o Object) Prototype(space []byte) Value {
	return decodeValue(space[o.wordAddr(objWordPrototype0):])
}
func (o Object) SetPrototype(space []byte, v Value) {
	encodeValue(space[o.wordAddr(objWordPrototype0):], v)
}

func (o Object) Class(space []byte) Class {
	return Class(o.getWord(space, objWordClass) & 0xff)
}

func (o Object) IsCallable(space []byte) bool {
	return o.getWord(space, objWordClass)&callableFlag != 0
}
func (o Object) SetCallable(space []byte, callable bool) {
	w := o.getWord(space, objWordClass)
	if callable {
		w |= callableFlag
	} else {
		w &^= callableFlag
	}
	o.setWord(space, objWordClass, w)
}

// IsExtensible reports whether new own properties may still be added to
// o (ECMA-262 §8.12.9's [[Extensible]] internal property).
func (o Object) IsExtensible(space []byte) bool {
	return o.getWord(space, objWordClass)&nonExtensibleFlag == 0
}

// PreventExtensions clears [[Extensible]] permanently; there is no way
// back per ECMA-262 §15.2.3.10.
func (o Object) PreventExtensions(space []byte) {
	w := o.getWord(space, objWordClass)
	w |= nonExtensibleFlag
	o.setWord(space, objWordClass, w)
}

func (o Object) arrayAddr(space []byte) gc.Address {
	return gc.Address(binary.LittleEndian.Uint32(space[o.wordAddr(objWordArray):]))
}
func (o Object) setArrayAddr(space []byte, addr gc.Address) {
	binary.LittleEndian.PutUint32(space[o.wordAddr(objWordArray):], uint32(addr))
}

// ArrayStore returns the object's dense element store. The caller must
// already know Class()==ClassArray; a non-array object's array word is
// always Null.
func (o Object) ArrayStore(space []byte) (Array, bool) {
	addr := o.arrayAddr(space)
	if addr.IsNull() {
		return Array{}, false
	}
	return FromArrayAddr(addr), true
}

// GetElement reads a dense index of a ClassArray object.
func (o Object) GetElement(space []byte, index uint32) Value {
	arr, ok := o.ArrayStore(space)
	if !ok {
		return Undefined
	}
	return arr.Get(space, index)
}

// SetElement writes a dense index of a ClassArray object. Callers must
// route indices at or beyond maxDenseLength to DefineOwnProperty with an
// interned numeric-string name instead.
func (o Object) SetElement(h *gc.Heap, index uint32, v Value) error {
	arr, ok := o.ArrayStore(h.Space())
	if !ok {
		return NewInternalError("SetElement on a non-array object")
	}
	return arr.Set(h, index, v)
}

// ArrayLength returns a ClassArray object's current length, or 0 for a
// non-array object.
func (o Object) ArrayLength(space []byte) uint32 {
	arr, ok := o.ArrayStore(space)
	if !ok {
		return 0
	}
	return arr.Length(space)
}

func (o Object) hashAddr(space []byte) gc.Address {
	return gc.Address(binary.LittleEndian.Uint32(space[o.wordAddr(objWordHash):]))
}
func (o Object) setHashAddr(space []byte, addr gc.Address) {
	binary.LittleEndian.PutUint32(space[o.wordAddr(objWordHash):], uint32(addr))
}

func (o Object) hashTable(space []byte) (*Hash, bool) {
	addr := o.hashAddr(space)
	if addr.IsNull() {
		return nil, false
	}
	return attachHash(space, addr), true
}

// attachHash wraps an existing hash table array address. Capacity is
// recovered from the array's own GC header (size/entrySize) rather than
// stored redundantly in the object; count is recomputed by scanning
// occupied slots, which keeps Object property operations self-
// contained at the cost of an O(capacity) scan per attach. Hot paths
// that perform many operations in a row should keep the returned *Hash
// instead of re-deriving it via hashTable on every call.
func attachHash(space []byte, addr gc.Address) *Hash {
	capacity := gc.PayloadSize(space, addr) / entrySize
	ht := &Hash{base: addr, capacity: capacity}
	for i := 0; i < capacity; i++ {
		if ht.occupied(space, i) {
			ht.count++
		}
	}
	return ht
}

// ensureHash returns the object's property table, allocating one on
// first use.
func (o Object) ensureHash(h *gc.Heap) (*Hash, error) {
	space := h.Space()
	if ht, ok := o.hashTable(space); ok {
		return ht, nil
	}
	ht, err := NewHash(h, 8)
	if err != nil {
		return nil, err
	}
	o.setHashAddr(h.Space(), ht.Addr())
	return ht, nil
}

// GetOwnProperty implements ECMA-262 §8.12.1 [[GetOwnProperty]] for the
// plain-object case. It consults only the property table; elements in
// a ClassArray object's dense store are read with GetElement and are
// not found here.
func (o Object) GetOwnProperty(space []byte, name uint32) (Property, bool) {
	ht, ok := o.hashTable(space)
	if !ok {
		return Property{}, false
	}
	return ht.Get(space, name)
}

// DefineOwnProperty is the raw primitive behind ECMA-262 §8.12.9: it
// installs p as name's final, already-fully-resolved descriptor with no
// validation of its own. It does not implement [[DefineOwnProperty]]'s
// merge-with-existing-descriptor algorithm (generic partial descriptors
// filling in missing fields from the current entry, rejecting
// configurable/writable attribute changes that ECMA-262 forbids): that
// algorithm only matters once a partial-descriptor-accepting caller
// exists (the `Object.defineProperty` built-in, which is out of this
// repository's scope per spec.md §1's "built-in constructors/prototype
// methods" exclusion). JsEnv.SetProperty is this package's one caller
// that must honor an existing property's Writable/Configurable/
// Extensible attributes, and it does so itself (ECMA-262 §8.12.5
// [[Put]]/CanPut) before ever calling down to this primitive.
func (o Object) DefineOwnProperty(h *gc.Heap, name uint32, p Property) error {
	ht, err := o.ensureHash(h)
	if err != nil {
		return err
	}
	if err := ht.Add(h, name, p); err != nil {
		return err
	}
	// Add may have grown the table into a new array.
	o.setHashAddr(h.Space(), ht.Addr())
	return nil
}

// PrimitiveValueOf returns the primitive a ToObject wrapper object
// boxes, modeling ECMA-262's [[PrimitiveValue]] internal slot as a
// reserved own property (see primitiveValueSlot). ok is false for any
// object ToObject did not itself create.
func (o Object) PrimitiveValueOf(space []byte) (val Value, ok bool) {
	p, found := o.GetOwnProperty(space, primitiveValueSlot)
	if !found {
		return Value{}, false
	}
	return p.Value, true
}

// Delete implements ECMA-262 §8.12.7 [[Delete]] for own properties,
// returning false if the property exists but is non-configurable.
func (o Object) Delete(space []byte, name uint32) (deleted, existed bool) {
	ht, ok := o.hashTable(space)
	if !ok {
		return true, false
	}
	p, found := ht.Get(space, name)
	if !found {
		return true, false
	}
	if !p.Configurable {
		return false, true
	}
	ht.Remove(space, name)
	return true, true
}

// OwnKeys returns the object's own enumerable-or-not property names in
// table order (unordered per ECMA-262; see spec Design Notes on
// iteration order).
func (o Object) OwnKeys(space []byte) []uint32 {
	ht, ok := o.hashTable(space)
	if !ok {
		return nil
	}
	return ht.Keys(space)
}
