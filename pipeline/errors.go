package pipeline

import "errors"

var (
	// ErrInvalidGrid is returned for non-positive grid dimensions.
	ErrInvalidGrid = errors.New("invalid grid size")
	// ErrNoSeeds is returned when a configuration has zero seeds.
	ErrNoSeeds = errors.New("no seeds")
	// ErrParamRange is returned when a parameter lies outside its valid range.
	ErrParamRange = errors.New("parameter out of range")
	// ErrFixedPointOverflow is returned when the fixed-point scale could
	// overflow the statistics accumulators for the configured grid.
	ErrFixedPointOverflow = errors.New("fixed-point accumulation could overflow")
	// ErrAllocation is returned when grid-sized buffers cannot be allocated.
	ErrAllocation = errors.New("buffer allocation failed")
	// ErrCapabilityUnavailable is reported when parallel compute is not available.
	ErrCapabilityUnavailable = errors.New("parallel compute capability unavailable")
	// ErrFrameCancelled is returned by Step when the frame was abandoned.
	ErrFrameCancelled = errors.New("frame cancelled")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pipeline closed")
)
