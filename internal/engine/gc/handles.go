package gc

import "github.com/rjsgo/rjsgo/pkg/collections"

// RootTable is a free-list-backed table of persistent root slots. Every
// slot the table hands out via add is traced by a collection until
// explicitly released, regardless of any scope. The type parameter on
// Root[T] exists purely for compile-time handle safety; the table
// itself is untyped, matching how the engine stores every root as a
// bare Address.
type RootTable struct {
	slots []Address
	free  *collections.Stack[int]
	isFree []bool // parallel to slots; lets a walker skip free slots in O(1)
}

func newRootTable() *RootTable {
	return &RootTable{free: collections.NewStack[int]()}
}

func (t *RootTable) add(addr Address) int {
	if idx, ok := t.free.Pop(); ok {
		t.slots[idx] = addr
		t.isFree[idx] = false
		return idx
	}
	idx := len(t.slots)
	t.slots = append(t.slots, addr)
	t.isFree = append(t.isFree, false)
	return idx
}

func (t *RootTable) remove(idx int) {
	t.slots[idx] = Null
	t.isFree[idx] = true
	t.free.Push(idx)
}

func (t *RootTable) get(idx int) Address {
	if idx < 0 || idx >= len(t.slots) || t.isFree[idx] {
		panic(ErrInvalidRoot)
	}
	return t.slots[idx]
}

func (t *RootTable) set(idx int, addr Address) {
	t.slots[idx] = addr
}

func (t *RootTable) clone(idx int) int {
	return t.add(t.get(idx))
}

// Root is a persistent, explicitly-released handle to a heap object. It
// stays valid, and is kept up to date across moving collections, until
// Release is called. T is a phantom type parameter distinguishing
// handles to different JS-level types at compile time; it carries no
// runtime representation.
type Root[T any] struct {
	table *RootTable
	index int
}

// NewRoot creates a persistent root for addr in t.
func NewRoot[T any](t *RootTable, addr Address) Root[T] {
	return Root[T]{table: t, index: t.add(addr)}
}

// Addr returns the current address of the referenced object.
func (r Root[T]) Addr() Address { return r.table.get(r.index) }

// Clone creates an independent root referencing the same object. Both
// roots must be released independently.
func (r Root[T]) Clone() Root[T] {
	return Root[T]{table: r.table, index: r.table.clone(r.index)}
}

// Release returns the root's slot to the table's free list. Using the
// Root after Release is a programming error.
func (r Root[T]) Release() { r.table.remove(r.index) }

// IsValid reports whether r refers to a table and has not been
// released. It does not distinguish a released root from one whose slot
// was reused by a later add, so callers must not use a Root after
// Release.
func (r Root[T]) IsValid() bool { return r.table != nil && !r.table.isFree[r.index] }

// localScopeData holds the growable slot storage for one LocalScope.
// Growth doubles capacity and moves the old vector into history rather
// than reallocating in place, so that a *Address handed out by add
// before a grow remains valid (Go slices never move or reallocate
// existing elements on append within capacity, and the old backing
// array is kept alive by history).
type localScopeData struct {
	current []Address
	history [][]Address
}

const initialLocalCapacity = 8

func newLocalScopeData() *localScopeData {
	return &localScopeData{current: make([]Address, 0, initialLocalCapacity)}
}

func (d *localScopeData) add(addr Address) *Address {
	if len(d.current) == cap(d.current) {
		d.grow()
	}
	d.current = append(d.current, addr)
	return &d.current[len(d.current)-1]
}

func (d *localScopeData) grow() {
	d.history = append(d.history, d.current)
	d.current = make([]Address, 0, cap(d.current)*2)
}

// Local is a scoped handle to a heap object, valid only for the
// lifetime of the LocalScope it was allocated from. Like Root, T is a
// phantom type used only for compile-time handle safety.
type Local[T any] struct {
	slot *Address
}

func newLocal[T any](slot *Address) Local[T] {
	return Local[T]{slot: slot}
}

// Addr returns the current address of the referenced object.
func (l Local[T]) Addr() Address { return *l.slot }

// IsNil reports whether the handle is the zero value (not bound to any
// scope slot).
func (l Local[T]) IsNil() bool { return l.slot == nil }

// AsRoot promotes a Local to a Root in t, useful when a value computed
// in a nested scope must outlive that scope.
func AsRoot[T any](l Local[T], t *RootTable) Root[T] {
	return NewRoot[T](t, l.Addr())
}

// LocalScope is a LIFO-scoped region for Local handles. Creating a
// nested scope and closing it, in strict stack order, is the engine's
// only rule for reclaiming handle storage; there is no handle-level
// reference counting.
type LocalScope struct {
	heap  *Heap
	depth int
	data  *localScopeData
	open  bool
}

// NewLocal allocates a new handle slot in the scope, bound to addr.
func (s *LocalScope) NewLocal(addr Address) *Address {
	if !s.open {
		panic("gc: use of LocalScope after Close")
	}
	return s.data.add(addr)
}

// Close ends the scope. It must be called in LIFO order relative to any
// more-nested scope created from the same Heap; the Heap enforces this.
func (s *LocalScope) Close() {
	if !s.open {
		return
	}
	s.heap.closeLocalScope(s)
	s.open = false
}
