package gc

import "errors"

// ErrOutOfMemory is returned when a collection fails to free enough
// space for a pending allocation even after growing the heap according
// to Opts' growth factors. This is a host-fatal condition: it aborts
// the process the same way the ported engine's allocation failure
// panicked rather than returning a catchable script error, since no
// amount of script-level error handling can recover from an exhausted
// heap.
var ErrOutOfMemory = errors.New("gc: out of memory")

// ErrInvalidRoot is the value a RootTable panics with when asked to
// dereference a root index that was never handed out, or was already
// released.
var ErrInvalidRoot = errors.New("gc: invalid or released root handle")
