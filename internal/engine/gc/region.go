package gc

const pageSize = 4096

// region is a page-rounded byte arena backing one semispace. Heap
// objects are addressed into it by byte offset (Address) rather than a
// real pointer.
type region struct {
	bytes []byte
}

func newRegion(size int) *region {
	return &region{bytes: make([]byte, roundUpPage(size))}
}

func roundUpPage(n int) int {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// resize replaces the region's storage with a fresh, larger buffer. It
// is only ever called on the currently-inactive semispace immediately
// before a collection copies into it, so existing contents need not be
// preserved.
func (r *region) resize(size int) {
	r.bytes = make([]byte, roundUpPage(size))
}

func (r *region) len() int { return len(r.bytes) }
