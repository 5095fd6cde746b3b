// Package collections provides generic data structures: bitsets, stacks
// and queues. The engine's garbage collector uses VersionedBitset for
// its debug double-forward check and Stack for the root table's free
// list.
package collections

import "math/bits"

// VersionedBitset tracks set membership without paying the O(n) cost of
// clearing on every reuse. Reset bumps a version counter instead of
// zeroing the backing array, so a fresh collection cycle can reuse the
// same bitset to guard against visiting the same address twice.
type VersionedBitset struct {
	versions []uint32
	current  uint32
	size     int
}

// NewVersionedBitset creates a versioned bitset sized for at least size
// elements.
func NewVersionedBitset(size int) *VersionedBitset {
	if size <= 0 {
		size = 64
	}
	return &VersionedBitset{
		versions: make([]uint32, size),
		current:  1,
		size:     size,
	}
}

// Set marks index i as visited in the current version.
func (v *VersionedBitset) Set(i int) {
	if i < 0 {
		return
	}
	if i >= len(v.versions) {
		v.grow(i + 1)
	}
	v.versions[i] = v.current
}

// Test reports whether index i was visited in the current version.
func (v *VersionedBitset) Test(i int) bool {
	if i < 0 || i >= len(v.versions) {
		return false
	}
	return v.versions[i] == v.current
}

// TestAndSet reports the previous state of index i and then sets it,
// useful for "have I already queued this address" checks during a
// breadth-first scan.
func (v *VersionedBitset) TestAndSet(i int) bool {
	was := v.Test(i)
	v.Set(i)
	return was
}

// Reset clears the bitset in O(1) by advancing the version, falling
// back to a real clear only on the rare uint32 wraparound.
func (v *VersionedBitset) Reset() {
	v.current++
	if v.current == 0 {
		for i := range v.versions {
			v.versions[i] = 0
		}
		v.current = 1
	}
}

func (v *VersionedBitset) grow(newSize int) {
	if newSize <= len(v.versions) {
		return
	}
	newCap := len(v.versions) * 2
	if newCap < newSize {
		newCap = newSize
	}
	newVersions := make([]uint32, newCap)
	copy(newVersions, v.versions)
	v.versions = newVersions
	v.size = newSize
}

// Size returns the logical size of the bitset.
func (v *VersionedBitset) Size() int { return v.size }

// Bitset is a plain bit-per-element set for persistent (not versioned)
// membership. Nothing in the engine uses it.
type Bitset struct {
	bits []uint64
	size int
}

// NewBitset creates a new bitset with the given size.
func NewBitset(size int) *Bitset {
	if size <= 0 {
		size = 64
	}
	numWords := (size + 63) / 64
	return &Bitset{bits: make([]uint64, numWords), size: size}
}

// Set sets the bit at index i, growing the backing array if needed.
func (b *Bitset) Set(i int) {
	if i < 0 {
		return
	}
	wordIdx := i / 64
	if wordIdx >= len(b.bits) {
		b.grow(i + 1)
	}
	b.bits[wordIdx] |= 1 << uint(i%64)
	if i >= b.size {
		b.size = i + 1
	}
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i int) bool {
	if i < 0 || i/64 >= len(b.bits) {
		return false
	}
	return b.bits[i/64]&(1<<uint(i%64)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	count := 0
	for _, word := range b.bits {
		count += bits.OnesCount64(word)
	}
	return count
}

func (b *Bitset) grow(newSize int) {
	numWords := (newSize + 63) / 64
	if numWords <= len(b.bits) {
		return
	}
	newCap := len(b.bits) * 2
	if newCap < numWords {
		newCap = numWords
	}
	newBits := make([]uint64, newCap)
	copy(newBits, b.bits)
	b.bits = newBits
}
