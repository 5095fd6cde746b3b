package gc

import apperrors "github.com/rjsgo/rjsgo/pkg/errors"

// Opts tunes heap growth and collection timing. The three factors all
// follow the same convention as the engine this was ported from: growth
// factors must exceed 1 (otherwise the heap would never grow, or would
// shrink) and the preemptive-collection threshold must be at most 1
// (otherwise it would never trigger before an allocation overruns the
// semispace).
type Opts struct {
	// InitialHeapBytes is the size of each semispace when the heap is
	// constructed.
	InitialHeapBytes int
	// InitGC is the occupancy fraction (0,1] of the active semispace at
	// which a collection is triggered preemptively, before an allocation
	// would otherwise fail.
	InitGC float64
	// SlowGrowthFactor scales heap capacity on the first collection and
	// whenever the previous collection's survivors filled more than 50%
	// (but at most 85%) of the heap. Below 50% capacity is left
	// unchanged.
	SlowGrowthFactor float64
	// FastGrowthFactor scales heap capacity after a collection that
	// reclaimed little (the heap is under pressure and growing slowly
	// would just trigger another collection almost immediately).
	FastGrowthFactor float64
	// DebugValidate enables a check, made while each object is forwarded,
	// that no from-space address is copied twice in one collection; a
	// violation panics. It costs a bitset sized to the used heap per
	// collection and is for engine development, not production embedding.
	DebugValidate bool
}

// DefaultOpts returns the engine's stock tuning.
func DefaultOpts() Opts {
	return Opts{
		InitialHeapBytes: 16 * 1024 * 1024,
		InitGC:           0.95,
		SlowGrowthFactor: 1.5,
		FastGrowthFactor: 3.0,
	}
}

// Validate checks the invariants New requires of Opts.
func (o Opts) Validate() error {
	if o.FastGrowthFactor <= 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc: fast_growth_factor must be greater than 1.0")
	}
	if o.SlowGrowthFactor <= 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc: slow_growth_factor must be greater than 1.0")
	}
	if o.InitGC > 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc: init_gc must be less than or equal to 1.0")
	}
	if o.InitialHeapBytes <= 0 {
		return apperrors.New(apperrors.CodeConfig, "gc: initial_heap_bytes must be positive")
	}
	return nil
}
