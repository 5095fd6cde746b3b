package gc

// Address is a byte offset of an object's payload into whichever
// semispace is currently active. Go gives no safe way to do the raw
// pointer arithmetic the ported engine used, so every heap reference is
// represented as an offset into a []byte arena instead of a pointer;
// dereferencing means indexing the active space's byte slice at (or
// relative to) this offset.
//
// The zero Address is reserved as the null reference: no real object is
// ever allocated at offset zero, since a collection's first allocation
// always lands after the space's leading guard word.
type Address uint32

// Null is the null reference.
const Null Address = 0

// IsNull reports whether a is the null reference.
func (a Address) IsNull() bool { return a == Null }
