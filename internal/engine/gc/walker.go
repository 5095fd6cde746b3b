package gc

// WalkResult is returned by a Walker's Walk method to drive the GC's
// per-object field scan.
type WalkResult int

const (
	// WalkPointer indicates the word at the given index is itself a
	// heap Address that must be traced and possibly relocated.
	WalkPointer WalkResult = iota
	// WalkSkip indicates the word at the given index is not a pointer
	// (e.g. an inline number or flags word) and should be left alone.
	WalkSkip
	// WalkEnd indicates the object has no more fields to scan.
	WalkEnd
	// WalkEndArray indicates the object is an array and the walker has
	// finished describing it. The collector treats it exactly like
	// WalkEnd: the remaining words of the object are not scanned.
	WalkEndArray
)

// FinalizeResult is returned by a Walker's Finalize method.
type FinalizeResult int

const (
	// Finalized indicates the walker ran finalization logic for the
	// object (e.g. releasing an externally-owned resource it wraps).
	Finalized FinalizeResult = iota
	// NotFinalizable indicates the type tag has no finalizer.
	NotFinalizable
)

// Walker is the client-supplied oracle describing how to interpret the
// words of every heap type tag: which are pointers (for tracing and
// relocation) and which types need finalization before their storage is
// reused. The GC itself carries no knowledge of any concrete JS type; a
// single Walker implementation (internal/engine/rt's WalkerImpl) is
// installed when a Heap is constructed.
type Walker interface {
	// Walk inspects word `index` (0-based, counted from the start of the
	// object's payload) of the object of type tag `ty` whose payload
	// starts at `obj`. `space` is the semispace currently being scanned.
	Walk(space []byte, ty uint32, obj Address, index int) WalkResult
	// Finalize runs any necessary cleanup for the object of type tag ty
	// whose payload starts at obj, immediately before its storage is
	// reclaimed by a collection that determined it is unreachable.
	Finalize(space []byte, ty uint32, obj Address) FinalizeResult
	// CreateRootWalkers returns the set of RootWalkers describing
	// additional application-level root sets beyond the engine's own
	// root table and local scopes (for example, values cached on a
	// JsEnv outside of any handle).
	CreateRootWalkers() []RootWalker
}

// RootWalker enumerates a set of root slots for a Heap to trace during
// collection. Next returns a pointer to the next slot to trace, letting
// the GC overwrite the slot in place when the object it references
// moves; it returns (nil, false) once exhausted.
type RootWalker interface {
	Next() (*Address, bool)
}

// RootHandlesWalker adapts a *RootTable to the RootWalker protocol: it
// visits every occupied slot and lets the GC rewrite the slot's address
// in place when the referenced object is relocated.
type RootHandlesWalker struct {
	table *RootTable
	next  int
}

func newRootHandlesWalker(t *RootTable) *RootHandlesWalker {
	return &RootHandlesWalker{table: t}
}

func (w *RootHandlesWalker) Next() (*Address, bool) {
	for w.next < len(w.table.slots) {
		idx := w.next
		w.next++
		if !w.table.isFree[idx] {
			return &w.table.slots[idx], true
		}
	}
	return nil, false
}

// LocalScopesWalker walks every slot of every live LocalScope, across
// both each scope's current vector and its history of grown-past
// vectors, so a moving collection can find and rewrite every local
// handle no matter which vector it was allocated from.
type LocalScopesWalker struct {
	scopes   []*localScopeData
	scopeIdx int
	histIdx  int // len(history) once history is exhausted and we're scanning current
	slotIdx  int
}

func newLocalScopesWalker(scopes []*localScopeData) *LocalScopesWalker {
	return &LocalScopesWalker{scopes: scopes}
}

func (w *LocalScopesWalker) Next() (*Address, bool) {
	for w.scopeIdx < len(w.scopes) {
		d := w.scopes[w.scopeIdx]

		if w.histIdx < len(d.history) {
			vec := d.history[w.histIdx]
			if w.slotIdx < len(vec) {
				slot := &vec[w.slotIdx]
				w.slotIdx++
				return slot, true
			}
			w.histIdx++
			w.slotIdx = 0
			continue
		}

		if w.slotIdx < len(d.current) {
			slot := &d.current[w.slotIdx]
			w.slotIdx++
			return slot, true
		}

		w.scopeIdx++
		w.histIdx = 0
		w.slotIdx = 0
	}
	return nil, false
}
