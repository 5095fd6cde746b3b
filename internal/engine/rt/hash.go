package rt

import (
	"encoding/binary"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// TypeHashTable is the heap type tag for a property hash store's entry
// array.
const TypeHashTable uint32 = 2

// Property attribute flags, following ECMA-262 §8.6.1's [[Writable]],
// [[Enumerable]], [[Configurable]] plus an internal accessor marker and
// an occupancy marker distinguishing a live entry from an empty slot.
// Removing an entry clears its slot entirely; there are no tombstones.
const (
	flagOccupied     uint32 = 1 << 0
	flagWritable     uint32 = 1 << 1
	flagEnumerable   uint32 = 1 << 2
	flagConfigurable uint32 = 1 << 3
	flagAccessor     uint32 = 1 << 4
)

// entrySize is the byte size of one property entry: name(4) + flags(4)
// + next(4) + pad(4) + value1(16) + value2(16). value2 holds the setter
// half of an accessor pair and is otherwise unused.
const entrySize = 48
const entryWords = entrySize / 8

const noNext int32 = -1

// maxLoadFactor bounds occupancy before the table is grown; matches the
// 70% figure the original engine used.
const maxLoadFactor = 0.70

// Hash is an open-addressed property store: an entry's home bucket is
// name mod capacity, collisions are resolved by threading an in-array
// singly-linked chain from the home bucket (the `next` field) rather
// than by re-probing, and an interloper occupying another name's home
// bucket is evicted to a free slot to keep each chain rooted at its
// true home.
type Hash struct {
	base     gc.Address
	capacity int
	count    int
}

// NewHash allocates a property store of at least initialCapacity slots
// (the smallest table prime not below it). The store grows once an
// insertion would fill more than maxLoadFactor of its slots.
func NewHash(h *gc.Heap, initialCapacity int) (*Hash, error) {
	cap := nextPrime(initialCapacity)
	addr, err := h.AllocArrayRaw(TypeHashTable, entrySize, cap)
	if err != nil {
		return nil, err
	}
	return &Hash{base: addr, capacity: cap}, nil
}

// Addr returns the address of the backing entry array, traced by the GC
// like any other heap object.
func (ht *Hash) Addr() gc.Address { return ht.base }
func (ht *Hash) Capacity() int    { return ht.capacity }
func (ht *Hash) Count() int       { return ht.count }

func entryOffset(base gc.Address, i int) gc.Address {
	return base + gc.Address(i*entrySize)
}

func (ht *Hash) name(space []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(space[entryOffset(ht.base, i):])
}
func (ht *Hash) setName(space []byte, i int, name uint32) {
	binary.LittleEndian.PutUint32(space[entryOffset(ht.base, i):], name)
}
func (ht *Hash) flags(space []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(space[entryOffset(ht.base, i)+4:])
}
func (ht *Hash) setFlags(space []byte, i int, f uint32) {
	binary.LittleEndian.PutUint32(space[entryOffset(ht.base, i)+4:], f)
}
func (ht *Hash) next(space []byte, i int) int32 {
	return int32(binary.LittleEndian.Uint32(space[entryOffset(ht.base, i)+8:]))
}
func (ht *Hash) setNext(space []byte, i int, n int32) {
	binary.LittleEndian.PutUint32(space[entryOffset(ht.base, i)+8:], uint32(n))
}
func (ht *Hash) value1(space []byte, i int) Value {
	return decodeValue(space[entryOffset(ht.base, i)+16 : entryOffset(ht.base, i)+32])
}
func (ht *Hash) setValue1(space []byte, i int, v Value) {
	encodeValue(space[entryOffset(ht.base, i)+16:entryOffset(ht.base, i)+32], v)
}
func (ht *Hash) value2(space []byte, i int) Value {
	return decodeValue(space[entryOffset(ht.base, i)+32 : entryOffset(ht.base, i)+48])
}
func (ht *Hash) setValue2(space []byte, i int, v Value) {
	encodeValue(space[entryOffset(ht.base, i)+32:entryOffset(ht.base, i)+48], v)
}

func (ht *Hash) occupied(space []byte, i int) bool {
	return ht.flags(space, i)&flagOccupied != 0
}

func (ht *Hash) clearSlot(space []byte, i int) {
	ht.setName(space, i, 0)
	ht.setFlags(space, i, 0)
	ht.setNext(space, i, noNext)
	ht.setValue1(space, i, Undefined)
	ht.setValue2(space, i, Undefined)
}

func (ht *Hash) home(name uint32) int {
	return int(name) % ht.capacity
}

// Property is the decoded view of one stored property, used at the
// Hash<->Object boundary.
type Property struct {
	Name         uint32
	Value        Value
	Getter       Value
	Setter       Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

func (ht *Hash) readProperty(space []byte, i int) Property {
	f := ht.flags(space, i)
	p := Property{
		Name:         ht.name(space, i),
		Writable:     f&flagWritable != 0,
		Enumerable:   f&flagEnumerable != 0,
		Configurable: f&flagConfigurable != 0,
		IsAccessor:   f&flagAccessor != 0,
	}
	if p.IsAccessor {
		p.Getter = ht.value1(space, i)
		p.Setter = ht.value2(space, i)
	} else {
		p.Value = ht.value1(space, i)
	}
	return p
}

func (ht *Hash) writeProperty(space []byte, i int, p Property) {
	f := flagOccupied
	if p.Writable {
		f |= flagWritable
	}
	if p.Enumerable {
		f |= flagEnumerable
	}
	if p.Configurable {
		f |= flagConfigurable
	}
	if p.IsAccessor {
		f |= flagAccessor
	}
	ht.setFlags(space, i, f)
	ht.setName(space, i, p.Name)
	if p.IsAccessor {
		ht.setValue1(space, i, p.Getter)
		ht.setValue2(space, i, p.Setter)
	} else {
		ht.setValue1(space, i, p.Value)
		ht.setValue2(space, i, Undefined)
	}
}

// Find returns the index of the entry for name, or (-1, false).
func (ht *Hash) Find(space []byte, name uint32) (int, bool) {
	i := ht.home(name)
	if !ht.occupied(space, i) {
		return -1, false
	}
	for {
		if ht.occupied(space, i) && ht.name(space, i) == name {
			return i, true
		}
		n := ht.next(space, i)
		if n < 0 {
			return -1, false
		}
		i = int(n)
	}
}

// Get returns the stored property for name, if any.
func (ht *Hash) Get(space []byte, name uint32) (Property, bool) {
	i, ok := ht.Find(space, name)
	if !ok {
		return Property{}, false
	}
	return ht.readProperty(space, i), true
}

// freeSlot finds a slot with no occupant, scanning forward from hint
// and wrapping around the table, used both by Add's "find a landing
// slot for the evicted interloper" step and its "find a landing slot
// for the new entry" step.
func (ht *Hash) freeSlot(space []byte, hint int) int {
	i := hint
	for {
		if !ht.occupied(space, i) {
			return i
		}
		i++
		if i >= ht.capacity {
			i = 0
		}
		if i == hint {
			return -1
		}
	}
}

// Add inserts or overwrites the property for name. It grows the table
// first if occupancy would exceed the load factor.
func (ht *Hash) Add(h *gc.Heap, name uint32, p Property) error {
	space := h.Space()
	if i, ok := ht.Find(space, name); ok {
		p.Name = name
		ht.writeProperty(space, i, p)
		return nil
	}

	if float64(ht.count+1) > float64(ht.capacity)*maxLoadFactor {
		if err := ht.grow(h); err != nil {
			return err
		}
		space = h.Space()
	}

	home := ht.home(name)
	p.Name = name

	if !ht.occupied(space, home) {
		ht.writeProperty(space, home, p)
		ht.setNext(space, home, noNext)
		ht.count++
		return nil
	}

	// An interloper: the slot at `home` is occupied by an entry whose
	// own home bucket is elsewhere (it only landed here as part of
	// another chain). Evict it to a free slot and re-thread whichever
	// chain referenced it, so `home` is free for the entry that
	// actually belongs there.
	occupantName := ht.name(space, home)
	if ht.home(occupantName) != home {
		newSlot := ht.freeSlot(space, home)
		if newSlot < 0 {
			return NewInternalError("property table has no free slot despite load-factor check")
		}
		occupant := ht.readProperty(space, home)
		occupantNext := ht.next(space, home)
		ht.writeProperty(space, newSlot, occupant)
		ht.setNext(space, newSlot, occupantNext)
		ht.relinkPredecessor(space, ht.home(occupantName), home, newSlot)

		ht.writeProperty(space, home, p)
		ht.setNext(space, home, noNext)
		ht.count++
		return nil
	}

	// home is occupied by a member of its own chain: append the new
	// entry to the tail of that chain, landing it in a free slot found
	// by scanning forward (chain-tail-then-wrap-scan).
	tail := home
	for {
		n := ht.next(space, tail)
		if n < 0 {
			break
		}
		tail = int(n)
	}
	newSlot := ht.freeSlot(space, tail)
	if newSlot < 0 {
		return NewInternalError("property table has no free slot despite load-factor check")
	}
	ht.writeProperty(space, newSlot, p)
	ht.setNext(space, newSlot, noNext)
	ht.setNext(space, tail, int32(newSlot))
	ht.count++
	return nil
}

// relinkPredecessor walks the chain rooted at chainHome looking for the
// entry whose next pointer is oldSlot, and repoints it to newSlot.
// chainHome itself is checked first since it has no predecessor link of
// its own to follow.
func (ht *Hash) relinkPredecessor(space []byte, chainHome, oldSlot, newSlot int) {
	if chainHome == oldSlot {
		return // chainHome was the one just evicted; caller already moved it
	}
	i := chainHome
	for {
		n := ht.next(space, i)
		if int(n) == oldSlot {
			ht.setNext(space, i, int32(newSlot))
			return
		}
		if n < 0 {
			return
		}
		i = int(n)
	}
}

// Remove deletes the property for name, handling the three cases the
// chain structure requires: removing a chain's sole/tail entry simply
// clears the slot; removing a chain's head entry (with a successor)
// promotes the successor into the head's slot so the home bucket stays
// occupied by a chain member; removing a mid-chain entry just splices
// it out of the link.
func (ht *Hash) Remove(space []byte, name uint32) bool {
	home := ht.home(name)
	if !ht.occupied(space, home) {
		return false
	}

	if ht.name(space, home) == name {
		next := ht.next(space, home)
		if next < 0 {
			ht.clearSlot(space, home)
		} else {
			// Promote the successor into the home slot, preserving the
			// invariant that a chain's root always occupies its home
			// bucket.
			succ := ht.readProperty(space, int(next))
			succNext := ht.next(space, int(next))
			ht.clearSlot(space, int(next))
			ht.writeProperty(space, home, succ)
			ht.setNext(space, home, succNext)
		}
		ht.count--
		return true
	}

	prev := home
	for {
		cur := ht.next(space, prev)
		if cur < 0 {
			return false
		}
		if ht.name(space, int(cur)) == name {
			curNext := ht.next(space, int(cur))
			ht.clearSlot(space, int(cur))
			ht.setNext(space, prev, curNext)
			ht.count--
			return true
		}
		prev = int(cur)
	}
}

// pinnedProp holds a decoded property whose reference-typed fields are
// kept live across a heap allocation via local handles, since the
// allocation may itself trigger a collection that relocates them.
type pinnedProp struct {
	name                                          uint32
	writable, enumerable, configurable, isAccessor bool
	val, getter, setter Value
	valSlot, getSlot, setSlot *gc.Address
}

func isRefType(t Type) bool {
	switch t {
	case TypeString, TypeObject, TypeIterator, TypeScope:
		return true
	default:
		return false
	}
}

// grow reallocates the backing array at the next prime capacity and
// reinserts every live entry; the old array is left for the next
// collection to reclaim.
func (ht *Hash) grow(h *gc.Heap) error {
	oldCap := ht.capacity
	space := h.Space()

	scope := h.NewLocalScope()
	defer scope.Close()

	pin := func(v Value) (Value, *gc.Address) {
		if !isRefType(v.Ty()) {
			return v, nil
		}
		return Value{ty: v.ty}, scope.NewLocal(v.Addr())
	}

	pinned := make([]pinnedProp, 0, ht.count)
	for i := 0; i < oldCap; i++ {
		if !ht.occupied(space, i) {
			continue
		}
		p := ht.readProperty(space, i)
		pp := pinnedProp{
			name: p.Name, writable: p.Writable, enumerable: p.Enumerable,
			configurable: p.Configurable, isAccessor: p.IsAccessor,
		}
		if p.IsAccessor {
			pp.getter, pp.getSlot = pin(p.Getter)
			pp.setter, pp.setSlot = pin(p.Setter)
		} else {
			pp.val, pp.valSlot = pin(p.Value)
		}
		pinned = append(pinned, pp)
	}

	newCap := growPrimeCapacity(oldCap)
	newAddr, err := h.AllocArrayRaw(TypeHashTable, entrySize, newCap)
	if err != nil {
		return err
	}

	ht.base = newAddr
	ht.capacity = newCap
	ht.count = 0
	space = h.Space()
	for i := 0; i < newCap; i++ {
		ht.clearSlot(space, i)
	}

	resolve := func(v Value, slot *gc.Address) Value {
		if slot == nil {
			return v
		}
		return Value{ty: v.ty, addr: *slot}
	}

	for _, pp := range pinned {
		p := Property{
			Name: pp.name, Writable: pp.writable, Enumerable: pp.enumerable,
			Configurable: pp.configurable, IsAccessor: pp.isAccessor,
		}
		if pp.isAccessor {
			p.Getter = resolve(pp.getter, pp.getSlot)
			p.Setter = resolve(pp.setter, pp.setSlot)
		} else {
			p.Value = resolve(pp.val, pp.valSlot)
		}
		if err := ht.Add(h, p.Name, p); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the names of every occupied slot in table (bucket)
// order, matching the unordered iteration the engine documents for
// for-in (ECMA-262 leaves property enumeration order for non-array-
// index keys implementation-defined).
func (ht *Hash) Keys(space []byte) []uint32 {
	keys := make([]uint32, 0, ht.count)
	for i := 0; i < ht.capacity; i++ {
		if ht.occupied(space, i) {
			keys = append(keys, ht.name(space, i))
		}
	}
	return keys
}

// WalkEntry is called by the concrete Walker implementation for each
// word of a TypeHashTable array; pos is the word's offset within its
// 6-word entry. Word indices 3 and 5 are the value1/value2 payload
// words, whose pointer-ness depends on the tag byte stored in the word
// immediately preceding them (indices 2 and 4 respectively).
func WalkEntry(space []byte, obj gc.Address, index int) gc.WalkResult {
	pos := index % entryWords
	switch pos {
	case 3, 5:
		tagWordAddr := obj + gc.Address((index-1)*8)
		switch Type(space[tagWordAddr]) {
		case TypeString, TypeObject, TypeIterator, TypeScope:
			return gc.WalkPointer
		default:
			return gc.WalkSkip
		}
	default: // 0: name+flags, 1: next+pad, 2/4: value tag words
		return gc.WalkSkip
	}
}
