package fluid

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pass names reported to a PhaseTimer.
const (
	PhaseClear   = "grid_clear"
	PhaseCount   = "grid_count"
	PhaseIndex   = "grid_index"
	PhaseDensity = "density"
	PhaseForce   = "force"
)

// Phases lists the pass names in pipeline order.
var Phases = []string{PhaseClear, PhaseCount, PhaseIndex, PhaseDensity, PhaseForce}

// PhaseTimer receives a call as each pass begins.
type PhaseTimer interface {
	StartPhase(name string)
}

// State is the driver state.
type State int32

const (
	Idle State = iota
	Stepping
)

func (s State) String() string {
	if s == Stepping {
		return "stepping"
	}
	return "idle"
}

// Options are fixed for the lifetime of a Simulation.
type Options struct {
	MaxParticles     int
	InitialParticles int
	DomainHalfExtent float64
	GridDim          int
	LatticeSpacing   float64 // 0 = DefaultLatticeSpacing
	SeedRadius       float64 // 0 = DefaultSeedRadius
	NeighborSearch   NeighborSearch
	Workers          int   // 0 = GOMAXPROCS
	Seed             int64 // RNG seed for particles added by Resize
}

// StepInput carries the per-frame values supplied by the host.
type StepInput struct {
	DT            float64 // wall-clock frame delta in seconds
	Time          float64 // wall-clock time in seconds
	Pointer       Pointer
	BoundaryLimit float64 // domain half-extent confining particles this frame
}

// Simulation drives the per-frame pass sequence over a Store and Grid.
//
// Step, Resize and the accessors belong to a single control goroutine. A
// Resize issued while a step is in flight is deferred until before the next
// step's clear pass. SetParams is safe from any goroutine; edits take effect
// at the next frame start.
type Simulation struct {
	opts  Options
	store *Store
	grid  *Grid
	pool  *Pool
	rng   *rand.Rand

	mu            sync.Mutex
	params        Params
	pendingResize int // -1 when none
	state         atomic.Int32

	timer PhaseTimer
	frame int64
	time  float64
}

// New validates the options and parameters, allocates the buffers and seeds
// the initial lattice. An initial count above capacity is clamped.
func New(opts Options, params Params) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxParticles < 0 {
		return nil, fmt.Errorf("%w: max particles %d", ErrCapacity, opts.MaxParticles)
	}
	if opts.InitialParticles > opts.MaxParticles || opts.InitialParticles < 0 {
		clamped := max(0, min(opts.InitialParticles, opts.MaxParticles))
		slog.Warn("initial particle count clamped",
			"requested", opts.InitialParticles,
			"capacity", opts.MaxParticles,
			"count", clamped,
		)
		opts.InitialParticles = clamped
	}
	if opts.LatticeSpacing == 0 {
		opts.LatticeSpacing = DefaultLatticeSpacing
	}
	if opts.SeedRadius == 0 {
		opts.SeedRadius = DefaultSeedRadius
	}
	if opts.NeighborSearch == "" {
		opts.NeighborSearch = SearchGrid
	}
	if _, err := ParseNeighborSearch(string(opts.NeighborSearch)); err != nil {
		return nil, err
	}

	grid, err := NewGrid(opts.GridDim, opts.DomainHalfExtent, opts.MaxParticles)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}
	store, err := NewStore(opts.MaxParticles, opts.InitialParticles, opts.LatticeSpacing)
	if err != nil {
		return nil, fmt.Errorf("creating particle store: %w", err)
	}
	store.SetSeedRadius(opts.SeedRadius)

	return &Simulation{
		opts:          opts,
		store:         store,
		grid:          grid,
		pool:          NewPool(opts.Workers),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		params:        params,
		pendingResize: -1,
	}, nil
}

// SetPhaseTimer installs a per-pass timing hook (nil disables).
func (s *Simulation) SetPhaseTimer(t PhaseTimer) {
	s.timer = t
}

func (s *Simulation) startPhase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step runs one Clear → Count → Index → Density → Force cycle. Each pass
// completes fully before the next starts, and the integrated buffers are
// published before Step returns.
func (s *Simulation) Step(in StepInput) {
	s.mu.Lock()
	if s.pendingResize >= 0 {
		s.applyResize(s.pendingResize)
		s.pendingResize = -1
	}
	params := s.params
	s.state.Store(int32(Stepping))
	s.mu.Unlock()

	defer s.state.Store(int32(Idle))

	n := s.store.Count()
	k := NewKernels(params.SmoothingRadius)
	nb := neighbors{mode: s.opts.NeighborSearch, grid: s.grid, n: n, h: params.SmoothingRadius}

	s.startPhase(PhaseClear)
	s.grid.Clear(s.pool)

	s.startPhase(PhaseCount)
	s.grid.Count(s.pool, s.store.Positions())

	if nb.mode == SearchGrid {
		s.startPhase(PhaseIndex)
		s.grid.BuildIndex(n)
	}

	s.startPhase(PhaseDensity)
	computeDensityPressure(s.pool, s.store, nb, k, &params)

	s.startPhase(PhaseForce)
	integrateForces(s.pool, s.store, nb, k, &params, frameInputs{
		dt:            params.ClampDT(in.DT),
		boundaryLimit: in.BoundaryLimit,
		pointer:       in.Pointer,
	})
	s.store.swap()

	s.frame++
	s.time = in.Time
}

// Resize changes the active particle count. While a step is in flight the
// request is deferred to the start of the next step.
func (s *Simulation) Resize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if State(s.state.Load()) == Stepping {
		s.pendingResize = max(0, n)
		return
	}
	s.applyResize(n)
}

func (s *Simulation) applyResize(n int) {
	before := s.store.Count()
	added := s.store.Resize(n, s.rng)
	if s.store.Count() == before {
		return
	}
	if added > 0 {
		slog.Info("added particles", "added", added)
	}
	slog.Info("particle count set", "count", s.store.Count())
}

// Load restores particle state, typically from a snapshot. It fails while a
// step is in flight and drops any pending resize.
func (s *Simulation) Load(positions, velocities []r2.Vec, frame int64, time float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if State(s.state.Load()) == Stepping {
		return fmt.Errorf("loading state: simulation is %s", Stepping)
	}
	if err := s.store.Load(positions, velocities); err != nil {
		return err
	}
	s.pendingResize = -1
	s.frame = frame
	s.time = time
	slog.Info("particle state loaded", "count", s.store.Count(), "frame", frame)
	return nil
}

// Params returns a copy of the current parameter record.
func (s *Simulation) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the parameter record. Degenerate sets are rejected and
// the previous record is kept.
func (s *Simulation) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Close stops the worker pool and releases the buffers.
func (s *Simulation) Close() {
	s.pool.Stop()
	s.store.release()
}

// State reports whether a step is in flight.
func (s *Simulation) State() State { return State(s.state.Load()) }

// Count returns the number of active particles.
func (s *Simulation) Count() int { return s.store.Count() }

// Capacity returns the maximum particle count.
func (s *Simulation) Capacity() int { return s.store.Capacity() }

// Positions returns the active positions as of the last completed step.
func (s *Simulation) Positions() []r2.Vec { return s.store.Positions() }

// Velocities returns the active velocities as of the last completed step.
func (s *Simulation) Velocities() []r2.Vec { return s.store.Velocities() }

// Densities returns the densities from the last density pass.
func (s *Simulation) Densities() []float64 { return s.store.Densities() }

// Pressures returns the pressures from the last density pass.
func (s *Simulation) Pressures() []float64 { return s.store.Pressures() }

// Grid exposes the spatial grid for histogram inspection.
func (s *Simulation) Grid() *Grid { return s.grid }

// Options returns the construction options after defaults were applied.
func (s *Simulation) Options() Options { return s.opts }

// Frame returns the number of completed steps.
func (s *Simulation) Frame() int64 { return s.frame }

// Time returns the wall-clock time passed to the last step.
func (s *Simulation) Time() float64 { return s.time }
