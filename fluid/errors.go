// Package fluid implements a 2D smoothed-particle hydrodynamics solver.
//
// A frame is a fixed sequence of data-parallel passes over fixed-capacity
// particle buffers: grid clear, grid count, neighbour index, density and
// pressure, then force integration. Each pass runs on a worker pool and the
// dispatching call returns only once every chunk is finished, which is the
// barrier between passes.
package fluid

import "errors"

var (
	// ErrCapacity is returned when a particle count exceeds the store capacity.
	ErrCapacity = errors.New("fluid: particle count exceeds capacity")

	// ErrDegenerateConfig is returned for zero or negative radius, mass or grid size.
	ErrDegenerateConfig = errors.New("fluid: degenerate configuration")

	// ErrAllocation is returned when the requested buffers cannot be allocated.
	ErrAllocation = errors.New("fluid: buffer allocation failed")
)
