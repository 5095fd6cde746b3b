// Package gc implements a precise, moving, two-space copying collector
// over a byte-addressed arena. It has no knowledge of any concrete
// JS-level type: object layout is described entirely through the
// Walker interface supplied at construction, so this package can be
// (and is) unit tested with synthetic object graphs having nothing to
// do with JsValue/JsObject.
package gc

import (
	"github.com/rjsgo/rjsgo/pkg/utils"
)

// Stats summarizes the outcome of the most recent collection, exposed
// for host diagnostics; nothing in the engine itself consults it.
type Stats struct {
	Collections      int
	BytesCapacity    int
	BytesAllocated   int
	LastBytesCopied  int
	LastSurvivorFrac float64
	LastGrew         bool
}

// Heap owns both semispaces, the persistent root table and the stack of
// open local scopes, and runs collections on demand.
type Heap struct {
	opts   Opts
	walker Walker
	logger utils.Logger

	from *region
	to   *region
	cap  int // current semispace capacity in bytes
	ptr  Address

	roots  *RootTable
	scopes []*localScopeData

	borrowed bool // reentrancy guard, mirrors a single-owner borrow check

	stats Stats
}

// New constructs a Heap. walker must not be nil; it is the sole source
// of type information the collector uses to trace and relocate objects.
func New(walker Walker, opts Opts, logger utils.Logger) (*Heap, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if walker == nil {
		panic("gc: walker must not be nil")
	}
	if logger == nil {
		logger = utils.NullLogger{}
	}
	h := &Heap{
		opts:   opts,
		walker: walker,
		logger: logger,
		cap:    opts.InitialHeapBytes,
		roots:  newRootTable(),
	}
	h.from = newRegion(opts.InitialHeapBytes)
	h.to = newRegion(opts.InitialHeapBytes)
	// Reserve the leading word so that Null (offset 0) never collides
	// with a real allocation.
	h.ptr = headerSize
	h.stats.BytesCapacity = h.from.len()
	return h, nil
}

func (h *Heap) enter() func() {
	if h.borrowed {
		panic("gc: re-entrant mutation of heap state")
	}
	h.borrowed = true
	return func() { h.borrowed = false }
}

// Roots returns the heap's persistent root table.
func (h *Heap) Roots() *RootTable { return h.roots }

// Space returns the byte slice backing the currently active semispace.
// Valid only until the next allocation (which may trigger a collection
// and swap spaces) or the next collection.
func (h *Heap) Space() []byte { return h.from.bytes }

// Stats returns a snapshot of the heap's allocation statistics.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.BytesAllocated = int(h.ptr)
	return s
}

// AllocRaw reserves size bytes (rounded up to a word) tagged with
// typeTag and returns the address of the payload (immediately after its
// header). It triggers a collection, possibly growing the heap, if
// there is not enough room.
func (h *Heap) AllocRaw(typeTag uint32, size int) (Address, error) {
	return h.allocInternal(typeTag, size, false)
}

// AllocArrayRaw reserves room for an array object: a header, then
// count*elemSize bytes of element storage. The header's is-array bit
// marks the payload as a flat homogeneous run rather than a fixed field
// layout; the collector itself still asks the walker about every word.
func (h *Heap) AllocArrayRaw(typeTag uint32, elemSize, count int) (Address, error) {
	return h.allocInternal(typeTag, elemSize*count, true)
}

func (h *Heap) allocInternal(typeTag uint32, size int, isArray bool) (Address, error) {
	defer h.enter()()

	size = alignWord(size)
	total := headerSize + size

	if float64(h.ptr)+float64(total) > float64(len(h.from.bytes))*h.opts.InitGC {
		h.collect()
	}
	if int(h.ptr)+total > len(h.from.bytes) {
		h.collect()
		if int(h.ptr)+total > len(h.from.bytes) {
			return Null, ErrOutOfMemory
		}
	}

	hdrAddr := h.ptr
	payload := hdrAddr + headerSize
	writeHeader(h.from.bytes, hdrAddr, newHeader(typeTag, size, isArray))
	h.ptr = payload + Address(size)
	return payload, nil
}

// NewRootAddr creates a persistent root referencing addr.
func NewRootAddr[T any](h *Heap, addr Address) Root[T] {
	return NewRoot[T](h.roots, addr)
}

// NewLocalScope opens a new LocalScope. Scopes must be closed in LIFO
// order; Close enforces this by panicking if scopes are closed out of
// order.
func (h *Heap) NewLocalScope() *LocalScope {
	defer h.enter()()
	d := newLocalScopeData()
	h.scopes = append(h.scopes, d)
	return &LocalScope{heap: h, depth: len(h.scopes) - 1, data: d, open: true}
}

func (h *Heap) closeLocalScope(s *LocalScope) {
	defer h.enter()()
	if s.depth != len(h.scopes)-1 {
		panic("gc: local scopes must be closed in LIFO order")
	}
	h.scopes = h.scopes[:s.depth]
}

// NewLocal allocates a handle for addr in scope.
func NewLocal[T any](scope *LocalScope, addr Address) Local[T] {
	return newLocal[T](scope.NewLocal(addr))
}

// Collect forces a collection cycle. It is exposed for tests and for
// host tooling; the engine itself only ever triggers collections
// implicitly from allocation pressure.
func (h *Heap) Collect() {
	defer h.enter()()
	h.collect()
}
