package gc

import (
	"encoding/binary"

	"github.com/rjsgo/rjsgo/pkg/collections"
)

// collect runs one Cheney-style stop-the-world copying cycle: every
// live object reachable from a root is copied into a fresh to-space,
// breadth-first, leaving a forwarding address behind in from-space so
// that later references to an already-copied object are redirected
// instead of duplicated. Once scanning is complete, to-space becomes
// the new from-space and capacity is adjusted for the next cycle based
// on how much was reclaimed.
//
// collect must only be called while the caller already holds the
// heap's reentrancy guard (see Heap.enter): it mutates from/to/ptr/roots
// directly and is not itself reentrant-safe.
func (h *Heap) collect() {
	before := int(h.ptr)

	newCap := h.growCapacity(before)
	h.to.resize(newCap)

	toPtr := Address(headerSize)
	scanPtr := Address(headerSize)

	var forwardedOnce *collections.VersionedBitset
	if h.opts.DebugValidate {
		forwardedOnce = collections.NewVersionedBitset(before)
	}

	forward := func(addr Address) Address {
		if addr.IsNull() {
			return Null
		}
		hAddr := headerAddr(addr)
		hdr := readHeader(h.from.bytes, hAddr)
		if hdr.isForwarded() {
			return readForwardAddr(h.from.bytes, addr)
		}

		if forwardedOnce != nil {
			if forwardedOnce.TestAndSet(int(hAddr)) {
				panic("gc: from-space object forwarded twice in one collection")
			}
		}

		size := hdr.size()
		isArray := hdr.isArray()
		ty := hdr.typeTag()

		newAddr := toPtr + headerSize
		writeHeader(h.to.bytes, toPtr, newHeader(ty, size, isArray))
		copy(h.to.bytes[newAddr:newAddr+Address(size)], h.from.bytes[addr:addr+Address(size)])
		toPtr = newAddr + Address(size)

		writeHeader(h.from.bytes, hAddr, newHeader(forwardedTag, 0, false))
		writeForwardAddr(h.from.bytes, addr, newAddr)
		return newAddr
	}

	// Trace the engine's own root families first.
	h.forEachRootSlot(func(slot *Address) {
		*slot = forward(*slot)
	})

	// Then any application-level root sets the walker declares.
	for _, rw := range h.walker.CreateRootWalkers() {
		for {
			slot, ok := rw.Next()
			if !ok {
				break
			}
			*slot = forward(*slot)
		}
	}

	for scanPtr < toPtr {
		hAddr := scanPtr
		hdr := readHeader(h.to.bytes, hAddr)
		obj := hAddr + headerSize
		wordCount := hdr.size() / 8

		for i := 0; i < wordCount; i++ {
			r := h.walker.Walk(h.to.bytes, hdr.typeTag(), obj, i)
			switch r {
			case WalkPointer:
				wordAddr := obj + Address(i*8)
				ptr := Address(binary.LittleEndian.Uint32(h.to.bytes[wordAddr:]))
				newPtr := forward(ptr)
				binary.LittleEndian.PutUint32(h.to.bytes[wordAddr:], uint32(newPtr))
			case WalkEnd, WalkEndArray:
				i = wordCount
			case WalkSkip:
			}
		}

		scanPtr = obj + Address(hdr.size())
	}

	h.finalizeUnreachable(before)

	h.from, h.to = h.to, h.from
	h.ptr = toPtr
	h.cap = newCap

	h.stats.Collections++
	h.stats.BytesCapacity = h.cap
	h.stats.LastBytesCopied = int(toPtr)
	if before > 0 {
		h.stats.LastSurvivorFrac = float64(toPtr) / float64(before)
	}
}

// finalizeUnreachable walks the old from-space linearly (it is still
// laid out as a sequence of headers up to `before`) and invokes
// Finalize on every object that was never forwarded, i.e. never found
// reachable during the trace above.
func (h *Heap) finalizeUnreachable(before int) {
	addr := Address(headerSize)
	for int(addr) < before {
		hAddr := addr
		hdr := readHeader(h.from.bytes, hAddr)
		if hdr.isForwarded() {
			// size was zeroed when the forwarding marker was written;
			// recover the real size from the to-space copy's header.
			toAddr := readForwardAddr(h.from.bytes, hAddr+headerSize)
			realHdr := readHeader(h.to.bytes, headerAddr(toAddr))
			addr = hAddr + headerSize + Address(realHdr.size())
			continue
		}
		h.walker.Finalize(h.from.bytes, hdr.typeTag(), hAddr+headerSize)
		addr = hAddr + headerSize + Address(hdr.size())
	}
}

// growCapacity applies the engine's slow/fast growth policy (spec.md
// §4.1): survivors above 85% of capacity grow the heap by
// FastGrowthFactor, to avoid immediately re-triggering another
// collection; survivors above 50% (but at most 85%) grow it by the
// gentler SlowGrowthFactor; below that the heap evidently has plenty of
// headroom and capacity is left unchanged.
func (h *Heap) growCapacity(_ int) int {
	if h.stats.Collections == 0 {
		// First collection: no history to judge pressure from yet, so
		// just grow slowly from the configured initial size.
		return scaleCap(h.cap, h.opts.SlowGrowthFactor)
	}
	survivorFrac := h.stats.LastSurvivorFrac
	switch {
	case survivorFrac > 0.85:
		return scaleCap(h.cap, h.opts.FastGrowthFactor)
	case survivorFrac > 0.5:
		return scaleCap(h.cap, h.opts.SlowGrowthFactor)
	default:
		return h.cap
	}
}

func scaleCap(capBytes int, factor float64) int {
	return roundUpPage(int(float64(capBytes) * factor))
}

func (h *Heap) forEachRootSlot(fn func(slot *Address)) {
	rw := newRootHandlesWalker(h.roots)
	for {
		slot, ok := rw.Next()
		if !ok {
			break
		}
		fn(slot)
	}
	sw := newLocalScopesWalker(h.scopes)
	for {
		slot, ok := sw.Next()
		if !ok {
			break
		}
		fn(slot)
	}
}
