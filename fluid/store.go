package fluid

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Seeding constants.
const (
	DefaultLatticeSpacing = 0.05 // distance between lattice neighbours at initialization
	DefaultSeedRadius     = 0.2  // disc radius for particles added by Resize

	// MaxStoreCapacity bounds a single store allocation.
	MaxStoreCapacity = 1 << 24
)

// Store owns the particle buffers. Every buffer is sized to the capacity
// fixed at construction; only the first Count() entries are meaningful.
//
// Positions and velocities are double-buffered. The force pass reads the
// front buffers and writes the back buffers, and swap() publishes them.
type Store struct {
	capacity int
	count    int

	pos     []r2.Vec
	vel     []r2.Vec
	nextPos []r2.Vec
	nextVel []r2.Vec
	density []float64
	press   []float64

	seedRadius float64
}

// NewStore allocates buffers for capacity particles and seeds the first
// initialCount of them on a centred square lattice at rest.
func NewStore(capacity, initialCount int, latticeSpacing float64) (*Store, error) {
	if capacity < 0 || initialCount < 0 || initialCount > capacity {
		return nil, fmt.Errorf("%w: initial %d, capacity %d", ErrCapacity, initialCount, capacity)
	}
	if capacity > MaxStoreCapacity {
		return nil, fmt.Errorf("%w: capacity %d exceeds %d", ErrAllocation, capacity, MaxStoreCapacity)
	}
	if !(latticeSpacing > 0) {
		return nil, fmt.Errorf("%w: lattice spacing %v", ErrDegenerateConfig, latticeSpacing)
	}

	s := &Store{
		capacity:   capacity,
		count:      initialCount,
		pos:        make([]r2.Vec, capacity),
		vel:        make([]r2.Vec, capacity),
		nextPos:    make([]r2.Vec, capacity),
		nextVel:    make([]r2.Vec, capacity),
		density:    make([]float64, capacity),
		press:      make([]float64, capacity),
		seedRadius: DefaultSeedRadius,
	}
	SeedLattice(s.pos[:initialCount], latticeSpacing)
	return s, nil
}

// SeedLattice places len(dst) points on a square lattice centred on the
// origin, filling row by row.
func SeedLattice(dst []r2.Vec, spacing float64) {
	n := len(dst)
	if n == 0 {
		return
	}
	cols := int(math.Sqrt(float64(n)))
	if cols < 1 {
		cols = 1
	}
	offset := float64(cols-1) * spacing / 2
	for i := range dst {
		col := i % cols
		row := i / cols
		dst[i] = r2.Vec{
			X: float64(col)*spacing - offset,
			Y: float64(row)*spacing - offset,
		}
	}
}

// SampleDisc returns a point uniformly distributed inside a disc of the
// given radius around the origin.
func SampleDisc(rng *rand.Rand, radius float64) r2.Vec {
	r := radius * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	return r2.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// SetSeedRadius changes the disc radius used when growing.
func (s *Store) SetSeedRadius(r float64) {
	if r > 0 {
		s.seedRadius = r
	}
}

// Resize changes the active particle count, clamped to [0, Capacity()].
// Growth writes fresh particles into the trailing region; shrinking only
// lowers the count and leaves the trailing data stale. Returns the number
// of particles added.
func (s *Store) Resize(newCount int, rng *rand.Rand) int {
	newCount = max(0, min(newCount, s.capacity))
	if newCount == s.count {
		return 0
	}
	added := 0
	if newCount > s.count {
		for i := s.count; i < newCount; i++ {
			s.pos[i] = SampleDisc(rng, s.seedRadius)
			s.vel[i] = r2.Vec{}
			s.density[i] = 0
			s.press[i] = 0
		}
		added = newCount - s.count
	}
	s.count = newCount
	return added
}

// Load replaces the active particles with the given state. Densities and
// pressures are zeroed until the next density pass.
func (s *Store) Load(positions, velocities []r2.Vec) error {
	if len(positions) != len(velocities) {
		return fmt.Errorf("%w: %d positions, %d velocities", ErrDegenerateConfig, len(positions), len(velocities))
	}
	if len(positions) > s.capacity {
		return fmt.Errorf("%w: loading %d, capacity %d", ErrCapacity, len(positions), s.capacity)
	}
	s.count = len(positions)
	copy(s.pos, positions)
	copy(s.vel, velocities)
	clear(s.density[:s.count])
	clear(s.press[:s.count])
	return nil
}

// swap publishes the back position and velocity buffers.
func (s *Store) swap() {
	s.pos, s.nextPos = s.nextPos, s.pos
	s.vel, s.nextVel = s.nextVel, s.vel
}

// Count returns the number of active particles.
func (s *Store) Count() int { return s.count }

// Capacity returns the fixed buffer capacity.
func (s *Store) Capacity() int { return s.capacity }

// Positions returns the active positions.
func (s *Store) Positions() []r2.Vec { return s.pos[:s.count] }

// Velocities returns the active velocities.
func (s *Store) Velocities() []r2.Vec { return s.vel[:s.count] }

// Densities returns the densities computed by the last density pass.
func (s *Store) Densities() []float64 { return s.density[:s.count] }

// Pressures returns the pressures computed by the last density pass.
func (s *Store) Pressures() []float64 { return s.press[:s.count] }

// release drops every buffer.
func (s *Store) release() {
	s.pos, s.vel, s.nextPos, s.nextVel = nil, nil, nil, nil
	s.density, s.press = nil, nil
	s.count, s.capacity = 0, 0
}
