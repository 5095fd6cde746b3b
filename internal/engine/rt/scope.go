package rt

import (
	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// TypeScopeArray is the heap type tag for a JsScope's backing array of
// value slots.
const TypeScopeArray uint32 = 3

// Scope indices. Slot 0 is always the parent link. A thin scope stores
// its locals starting at index 1. A thick scope instead stores a scope
// object at index 1 and, optionally, an arguments object at index 2;
// property lookups against a thick scope go through the scope object
// rather than indexed slots.
const (
	scopeSlotParent = 0
	scopeSlotObject = 1
	scopeSlotArgs   = 2
)

// ScopeKind distinguishes the two physical scope layouts the engine
// uses: a thin scope for function activation records with a fixed,
// statically-known set of local slots, and a thick scope (global scope,
// with-statement scope, catch-clause scope) backed by a real property
// object for dynamic lookups.
type ScopeKind int

const (
	ScopeThin ScopeKind = iota
	ScopeThick
)

// Scope is a handle to a heap-allocated scope frame.
type Scope struct {
	addr gc.Address
	kind ScopeKind
	n    int // total slot count, including the parent link
}

// NewThinScope allocates a scope with `locals` local slots plus the
// parent link, all initialized to Undefined.
func NewThinScope(h *gc.Heap, parent Value, locals int) (Scope, error) {
	n := locals + 1
	addr, err := h.AllocArrayRaw(TypeScopeArray, valueWordSize, n)
	if err != nil {
		return Scope{}, err
	}
	s := Scope{addr: addr, kind: ScopeThin, n: n}
	s.rawSet(h.Space(), scopeSlotParent, parent)
	for i := 1; i < n; i++ {
		s.rawSet(h.Space(), i, Undefined)
	}
	return s, nil
}

// NewThickScope allocates a scope backed by a scope object, optionally
// with an arguments object.
func NewThickScope(h *gc.Heap, parent, scopeObject, arguments Value) (Scope, error) {
	n := 2
	if !arguments.IsUndefined() {
		n = 3
	}
	addr, err := h.AllocArrayRaw(TypeScopeArray, valueWordSize, n)
	if err != nil {
		return Scope{}, err
	}
	s := Scope{addr: addr, kind: ScopeThick, n: n}
	s.rawSet(h.Space(), scopeSlotParent, parent)
	s.rawSet(h.Space(), scopeSlotObject, scopeObject)
	if n == 3 {
		s.rawSet(h.Space(), scopeSlotArgs, arguments)
	}
	return s, nil
}

// FromAddr wraps an existing scope array address with the kind and
// slot count supplied by the caller (scopes carry no explicit kind tag
// of their own; callers that need to distinguish thin from thick after
// the fact should record ScopeKind alongside the Scope handle).
func FromAddr(addr gc.Address, kind ScopeKind, n int) Scope {
	return Scope{addr: addr, kind: kind, n: n}
}

func (s Scope) Addr() gc.Address { return s.addr }
func (s Scope) Kind() ScopeKind  { return s.kind }
func (s Scope) Len() int         { return s.n }

// Parent returns the enclosing scope, or Undefined at the top of the
// chain.
func (s Scope) Parent(space []byte) Value { return s.rawGet(space, scopeSlotParent) }

// ScopeObject returns the backing object of a thick scope; callers must
// already know s.Kind() == ScopeThick.
func (s Scope) ScopeObject(space []byte) Value { return s.rawGet(space, scopeSlotObject) }

// Arguments returns the arguments object of a thick scope, or
// Undefined if none was attached.
func (s Scope) Arguments(space []byte) Value {
	if s.kind != ScopeThick || s.n < 3 {
		return Undefined
	}
	return s.rawGet(space, scopeSlotArgs)
}

// SetArguments attaches an arguments object to an existing thick scope
// that was allocated with room for one.
func (s Scope) SetArguments(space []byte, v Value) {
	if s.kind != ScopeThick || s.n < 3 {
		panic("rt: scope has no arguments slot")
	}
	s.rawSet(space, scopeSlotArgs, v)
}

// Get reads local slot `index` of a thin scope (index 0 is the parent
// link and is reserved; local slots begin at 1).
func (s Scope) Get(space []byte, index int) Value {
	if index <= 0 || index >= s.n {
		panic(NewReferenceError("scope slot %d out of range", index))
	}
	return s.rawGet(space, index)
}

// Set writes local slot `index` of a thin scope.
func (s Scope) Set(space []byte, index int, v Value) {
	if index <= 0 || index >= s.n {
		panic(NewReferenceError("scope slot %d out of range", index))
	}
	s.rawSet(space, index, v)
}

func (s Scope) rawGet(space []byte, index int) Value {
	return decodeValue(valueSlot(space, s.addr, index))
}

func (s Scope) rawSet(space []byte, index int, v Value) {
	encodeValue(valueSlot(space, s.addr, index), v)
}
