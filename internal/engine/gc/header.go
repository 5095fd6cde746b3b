package gc

import "encoding/binary"

// headerSize is the size in bytes of the packed header word that
// precedes every object's payload.
const headerSize = 8

// forwardedTag is a reserved type tag value (outside the 0..126 range a
// real walker ever assigns) that marks a from-space object as already
// copied to to-space. When an object carries this tag, the address of
// its to-space copy is stored in the first word of its old payload
// rather than real field data; nothing else in from-space is live once
// a collection starts scanning it, so that word is safe to repurpose.
const forwardedTag uint32 = 0x7f

// header is the packed 8-byte record: a 7-bit type tag, a 24-bit
// payload size in bytes and a 1-bit is-array flag, laid out as
//
//	bit 0       is-array flag
//	bits 1-7    type tag
//	bits 8-31   payload size in bytes
//	bits 32-63  unused
type header uint64

func newHeader(typeTag uint32, size int, isArray bool) header {
	h := (uint64(typeTag)&0x7f)<<1 | (uint64(size)&0xffffff)<<8
	if isArray {
		h |= 1
	}
	return header(h)
}

func (h header) typeTag() uint32 { return uint32(h>>1) & 0x7f }
func (h header) size() int       { return int(h>>8) & 0xffffff }
func (h header) isArray() bool   { return h&1 != 0 }
func (h header) isForwarded() bool { return h.typeTag() == forwardedTag }

func readHeader(space []byte, headerAddr Address) header {
	return header(binary.LittleEndian.Uint64(space[headerAddr:]))
}

func writeHeader(space []byte, headerAddr Address, h header) {
	binary.LittleEndian.PutUint64(space[headerAddr:], uint64(h))
}

// headerAddr returns the address of the header preceding the object
// whose payload starts at payloadAddr.
func headerAddr(payloadAddr Address) Address {
	return payloadAddr - headerSize
}

func readForwardAddr(space []byte, payloadAddr Address) Address {
	return Address(binary.LittleEndian.Uint32(space[payloadAddr:]))
}

func writeForwardAddr(space []byte, payloadAddr Address, to Address) {
	binary.LittleEndian.PutUint32(space[payloadAddr:], uint32(to))
}

func alignWord(size int) int {
	const word = 8
	return (size + word - 1) &^ (word - 1)
}

// PayloadSize returns the byte size recorded in the header of the
// object whose payload starts at addr, letting a client reconstruct
// bookkeeping (like an array's element count) it chose not to store
// redundantly inside the payload itself.
func PayloadSize(space []byte, addr Address) int {
	return readHeader(space, headerAddr(addr)).size()
}

// TypeTag returns the type tag recorded in the header of the object
// whose payload starts at addr.
func TypeTag(space []byte, addr Address) uint32 {
	return readHeader(space, headerAddr(addr)).typeTag()
}
