package rt

import (
	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// WalkerImpl is the concrete gc.Walker the engine installs on every
// Heap it constructs: it is the one place that translates the rt-level
// heap type tags (TypeObjectHeader, TypeHashTable, TypeScopeArray,
// TypeArrayStore, TypeArrayHeader, TypeStringData) into the GC's
// word-at-a-time tracing protocol. Nothing else in this package, and nothing in gc, knows
// this mapping.
type WalkerImpl struct {
	// ExtraRoots holds slot pointers outside of any Root/Local handle
	// that must still be traced on every collection. JsEnv keeps its own
	// objects in the heap's root table and adds nothing here; embedders
	// that hold raw addresses elsewhere may. Callers append to this slice
	// before the first collection and must not resize it out from under
	// a collection in progress (the engine is single-threaded, so this
	// only matters relative to the collector itself).
	ExtraRoots []*gc.Address
}

// NewWalkerImpl constructs a WalkerImpl with no ExtraRoots.
func NewWalkerImpl() *WalkerImpl {
	return &WalkerImpl{}
}

func (w *WalkerImpl) Walk(space []byte, ty uint32, obj gc.Address, index int) gc.WalkResult {
	switch ty {
	case TypeObjectHeader:
		return walkObjectHeader(space, obj, index)
	case TypeHashTable:
		return WalkEntry(space, obj, index)
	case TypeScopeArray, TypeArrayStore:
		return WalkElement(space, obj, index)
	case TypeArrayHeader:
		return walkArrayHeader(index)
	case TypeStringData:
		return gc.WalkSkip
	default:
		return gc.WalkSkip
	}
}

// walkObjectHeader describes the 5-word JsObject layout: word 0 is the
// prototype Value's tag, word 1 its payload (a pointer iff the tag byte
// at word 0 names a reference type), word 2 is the packed class/
// callable-flag word, and words 3 and 4 are the (possibly null) hash-
// table and array-store addresses.
func walkObjectHeader(space []byte, obj gc.Address, index int) gc.WalkResult {
	switch index {
	case 0:
		return gc.WalkSkip
	case 1:
		if isRefType(Type(space[obj])) {
			return gc.WalkPointer
		}
		return gc.WalkSkip
	case 2:
		return gc.WalkSkip
	case 3, 4:
		return gc.WalkPointer
	default:
		return gc.WalkSkip
	}
}

// walkArrayHeader describes the 2-word JsArray header: word 0 is the
// logical length (not a pointer), word 1 is the dense element store's
// address.
func walkArrayHeader(index int) gc.WalkResult {
	switch index {
	case 1:
		return gc.WalkPointer
	default:
		return gc.WalkSkip
	}
}

func (w *WalkerImpl) Finalize(space []byte, ty uint32, obj gc.Address) gc.FinalizeResult {
	return gc.NotFinalizable
}

func (w *WalkerImpl) CreateRootWalkers() []gc.RootWalker {
	if len(w.ExtraRoots) == 0 {
		return nil
	}
	return []gc.RootWalker{newExtraRootsWalker(w.ExtraRoots)}
}

// extraRootsWalker adapts a flat slice of slot pointers to the
// RootWalker protocol.
type extraRootsWalker struct {
	slots []*gc.Address
	next  int
}

func newExtraRootsWalker(slots []*gc.Address) *extraRootsWalker {
	return &extraRootsWalker{slots: slots}
}

func (w *extraRootsWalker) Next() (*gc.Address, bool) {
	if w.next >= len(w.slots) {
		return nil, false
	}
	slot := w.slots[w.next]
	w.next++
	return slot, true
}
