package fluid

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func testOptions(max, initial int) Options {
	return Options{
		MaxParticles:     max,
		InitialParticles: initial,
		DomainHalfExtent: 1,
		GridDim:          DefaultGridDim,
		Workers:          4,
		Seed:             1,
	}
}

func newTestSim(t *testing.T, opts Options, p Params) *Simulation {
	t.Helper()
	s, err := New(opts, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func quietParams() Params {
	p := DefaultParams()
	p.Gravity = 0
	return p
}

const frameDT = 1.0 / 60

func TestNew_InitialState(t *testing.T) {
	s := newTestSim(t, testOptions(1000, 400), DefaultParams())
	if s.Count() != 400 || s.Capacity() != 1000 {
		t.Errorf("count/capacity = %d/%d, want 400/1000", s.Count(), s.Capacity())
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}
}

func TestNew_ClampsInitialCount(t *testing.T) {
	s := newTestSim(t, testOptions(100, 250), DefaultParams())
	if s.Count() != 100 {
		t.Errorf("count = %d, want clamped to 100", s.Count())
	}
}

func TestNew_RejectsDegenerateConfig(t *testing.T) {
	zeroH := DefaultParams()
	zeroH.SmoothingRadius = 0
	negMass := DefaultParams()
	negMass.ParticleMass = -1

	tests := []struct {
		name string
		opts Options
		p    Params
	}{
		{"zero smoothing radius", testOptions(10, 10), zeroH},
		{"negative mass", testOptions(10, 10), negMass},
		{"zero grid", Options{MaxParticles: 10, DomainHalfExtent: 1}, DefaultParams()},
		{"zero domain", Options{MaxParticles: 10, GridDim: 8}, DefaultParams()},
		{"bad search", Options{MaxParticles: 10, GridDim: 8, DomainHalfExtent: 1, NeighborSearch: "octree"}, DefaultParams()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, tt.p)
			if !errors.Is(err, ErrDegenerateConfig) {
				t.Errorf("err = %v, want ErrDegenerateConfig", err)
			}
		})
	}
}

func TestNew_RejectsOversizedAllocation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"huge capacity", Options{MaxParticles: 1 << 50, DomainHalfExtent: 1, GridDim: 8}},
		{"capacity just over limit", Options{MaxParticles: MaxStoreCapacity + 1, DomainHalfExtent: 1, GridDim: 8}},
		{"huge grid", Options{MaxParticles: 10, DomainHalfExtent: 1, GridDim: 1 << 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, DefaultParams())
			if !errors.Is(err, ErrAllocation) {
				t.Errorf("err = %v, want ErrAllocation", err)
			}
		})
	}
}

func TestStep_SingleParticleAtRestStaysPut(t *testing.T) {
	p := quietParams()
	p.RestDensity = NewKernels(p.SmoothingRadius).SelfDensity(p.ParticleMass)
	s := newTestSim(t, testOptions(1, 1), p)

	before := s.Positions()[0]
	if before != (r2.Vec{}) {
		t.Fatalf("single particle seeded at %v, want origin", before)
	}

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	if got := s.Positions()[0]; got != before {
		t.Errorf("position moved from %v to %v", before, got)
	}
	if got := s.Velocities()[0]; got != (r2.Vec{}) {
		t.Errorf("velocity = %v, want zero", got)
	}
	if s.Pressures()[0] != 0 {
		t.Errorf("pressure = %v, want 0 at rest density", s.Pressures()[0])
	}
}

func TestStep_GravityAccelerates(t *testing.T) {
	p := DefaultParams()
	s := newTestSim(t, testOptions(1, 1), p)

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	wantVY := -p.Gravity * p.DTMax
	if v := s.Velocities()[0]; math.Abs(v.Y-wantVY) > 1e-12 || v.X != 0 {
		t.Errorf("velocity = %v, want (0, %v)", v, wantVY)
	}
	// Semi-implicit Euler moves by the updated velocity.
	if y := s.Positions()[0].Y; math.Abs(y-wantVY*p.DTMax) > 1e-12 {
		t.Errorf("y = %v, want %v", y, wantVY*p.DTMax)
	}
}

func TestStep_BoundaryPushesInward(t *testing.T) {
	tests := []struct {
		name string
		pos  r2.Vec
		sign float64 // expected sign of resulting velocity along the axis
		axis string
	}{
		{"right wall", r2.Vec{X: 1.01}, -1, "x"},
		{"left wall", r2.Vec{X: -1.01}, 1, "x"},
		{"top wall", r2.Vec{Y: 1.01}, -1, "y"},
		{"bottom wall", r2.Vec{Y: -1.01}, 1, "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim(t, testOptions(1, 1), quietParams())
			s.Positions()[0] = tt.pos

			s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

			v := s.Velocities()[0]
			component := v.X
			if tt.axis == "y" {
				component = v.Y
			}
			if component*tt.sign <= 0 {
				t.Errorf("velocity %v does not point inward", v)
			}
		})
	}
}

func TestStep_BoundaryIsSoft(t *testing.T) {
	// A particle driven hard outward may overshoot the limit for a frame.
	s := newTestSim(t, testOptions(1, 1), quietParams())
	s.Positions()[0] = r2.Vec{X: 0.999}
	s.Velocities()[0] = r2.Vec{X: 5}

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	if x := s.Positions()[0].X; x <= 1 {
		t.Errorf("x = %v, expected transient overshoot beyond the limit", x)
	}
}

func TestStep_ClampsTimeStep(t *testing.T) {
	p := DefaultParams()
	s := newTestSim(t, testOptions(400, 400), p)
	before := append([]r2.Vec(nil), s.Positions()...)

	s.Step(StepInput{DT: 10, BoundaryLimit: 1}) // simulated stall

	limit := p.DTMax*p.MaxSpeed + 1e-9
	for i, x := range s.Positions() {
		if d := r2.Norm(r2.Sub(x, before[i])); d > limit {
			t.Errorf("particle %d moved %v > %v", i, d, limit)
		}
	}
}

func TestStep_NegativeDTDoesNotMove(t *testing.T) {
	s := newTestSim(t, testOptions(50, 50), DefaultParams())
	before := append([]r2.Vec(nil), s.Positions()...)
	s.Step(StepInput{DT: -1, BoundaryLimit: 1})
	for i, x := range s.Positions() {
		if x != before[i] {
			t.Fatalf("particle %d moved with negative dt", i)
		}
	}
}

func TestStep_PressureSeparatesPair(t *testing.T) {
	p := quietParams()
	p.RestDensity = 0
	p.GasConstant = 50
	p.PressureMultiplier = 1
	p.SurfaceTension = 0
	s := newTestSim(t, testOptions(2, 2), p)
	s.Positions()[0] = r2.Vec{X: -0.02}
	s.Positions()[1] = r2.Vec{X: 0.02}

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	v := s.Velocities()
	if v[0].X >= 0 || v[1].X <= 0 {
		t.Errorf("velocities %v, %v: pair should separate", v[0], v[1])
	}
	if math.Abs(v[0].X+v[1].X) > 1e-12 {
		t.Errorf("pressure forces not symmetric: %v vs %v", v[0].X, v[1].X)
	}
}

func TestStep_ViscosityDampsRelativeVelocity(t *testing.T) {
	p := quietParams()
	p.PressureMultiplier = 0
	p.SurfaceTension = 0
	p.ViscosityConstant = 0.05
	s := newTestSim(t, testOptions(2, 2), p)
	s.Positions()[0] = r2.Vec{X: -0.03}
	s.Positions()[1] = r2.Vec{X: 0.03}
	s.Velocities()[0] = r2.Vec{Y: 1}
	s.Velocities()[1] = r2.Vec{Y: -1}

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	v := s.Velocities()
	if rel := v[0].Y - v[1].Y; rel >= 2 || rel <= 0 {
		t.Errorf("relative velocity %v, want reduced below 2", rel)
	}
}

// tensionPair places two particles 0.1 apart with pressure and viscosity
// switched off so only surface tension acts between them.
func tensionPair(t *testing.T, p Params) *Simulation {
	t.Helper()
	p.RestDensity = 1e9
	p.ViscosityConstant = 0
	s := newTestSim(t, testOptions(2, 2), p)
	s.Positions()[0] = r2.Vec{X: -0.05}
	s.Positions()[1] = r2.Vec{X: 0.05}
	return s
}

func TestStep_SurfaceTensionPullsPairTogether(t *testing.T) {
	s := tensionPair(t, quietParams())

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	v := s.Velocities()
	if v[0].X <= 0 || v[1].X >= 0 {
		t.Errorf("velocities %v, %v: pair should move together", v[0], v[1])
	}
	if math.Abs(v[0].X+v[1].X) > 1e-9 {
		t.Errorf("tension forces not symmetric: %v vs %v", v[0].X, v[1].X)
	}
	if v[0].Y != 0 || v[1].Y != 0 {
		t.Errorf("velocities %v, %v: tension should act along the pair axis", v[0], v[1])
	}
}

func TestStep_SurfaceThresholdGatesTension(t *testing.T) {
	p := quietParams()
	p.SurfaceThreshold = 1e12
	s := tensionPair(t, p)

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	v := s.Velocities()
	if v[0] != (r2.Vec{}) || v[1] != (r2.Vec{}) {
		t.Errorf("velocities %v, %v: want zero below the gradient threshold", v[0], v[1])
	}
	pos := s.Positions()
	if pos[0].X != -0.05 || pos[1].X != 0.05 {
		t.Errorf("positions %v, %v: pair should not move", pos[0], pos[1])
	}
}

func TestStep_PointerAttracts(t *testing.T) {
	p := quietParams()
	s := newTestSim(t, testOptions(1, 1), p)

	s.Step(StepInput{
		DT:            frameDT,
		BoundaryLimit: 1,
		Pointer:       Pointer{Active: true, Pos: r2.Vec{X: 0.1}},
	})
	if v := s.Velocities()[0]; v.X <= 0 {
		t.Errorf("velocity %v, want pulled toward +x pointer", v)
	}
}

func TestStep_PointerIgnoredOutsideDomain(t *testing.T) {
	s := newTestSim(t, testOptions(1, 1), quietParams())
	s.Positions()[0] = r2.Vec{X: 0.9}

	s.Step(StepInput{
		DT:            frameDT,
		BoundaryLimit: 1,
		Pointer:       Pointer{Active: true, Pos: r2.Vec{X: 1.1}},
	})
	if v := s.Velocities()[0]; v != (r2.Vec{}) {
		t.Errorf("velocity %v, pointer outside the domain must not act", v)
	}
}

func TestStep_InactivePointerHasNoEffect(t *testing.T) {
	s := newTestSim(t, testOptions(1, 1), quietParams())
	s.Step(StepInput{
		DT:            frameDT,
		BoundaryLimit: 1,
		Pointer:       Pointer{Active: false, Pos: r2.Vec{X: 0.1}},
	})
	if v := s.Velocities()[0]; v != (r2.Vec{}) {
		t.Errorf("velocity %v with inactive pointer", v)
	}
}

func TestStep_HistogramMatchesCount(t *testing.T) {
	s := newTestSim(t, testOptions(2000, 1600), DefaultParams())
	for i := 0; i < 3; i++ {
		s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})
		if s.Grid().Total() != s.Count() {
			t.Fatalf("frame %d: histogram total %d, count %d", i, s.Grid().Total(), s.Count())
		}
	}
	if s.Frame() != 3 {
		t.Errorf("frame = %d, want 3", s.Frame())
	}
}

func TestStep_GridMatchesExhaustive(t *testing.T) {
	gridOpts := testOptions(600, 600)
	exOpts := gridOpts
	exOpts.NeighborSearch = SearchExhaustive

	a := newTestSim(t, gridOpts, DefaultParams())
	b := newTestSim(t, exOpts, DefaultParams())

	for f := 0; f < 5; f++ {
		in := StepInput{DT: frameDT, BoundaryLimit: 1, Pointer: Pointer{Active: true, Pos: r2.Vec{X: 0.3, Y: 0.2}}}
		a.Step(in)
		b.Step(in)
	}
	for i := range a.Positions() {
		if d := r2.Norm(r2.Sub(a.Positions()[i], b.Positions()[i])); d > 1e-9 {
			t.Fatalf("particle %d differs by %v between search modes", i, d)
		}
	}
}

func TestStep_StaysFinite(t *testing.T) {
	s := newTestSim(t, testOptions(1600, 1600), DefaultParams())
	for f := 0; f < 30; f++ {
		s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})
	}
	for i, x := range s.Positions() {
		if math.IsNaN(x.X) || math.IsNaN(x.Y) || math.IsInf(x.X, 0) || math.IsInf(x.Y, 0) {
			t.Fatalf("particle %d non-finite at %v", i, x)
		}
	}
}

func TestResize_DeferredWhileStepping(t *testing.T) {
	s := newTestSim(t, testOptions(100, 10), DefaultParams())

	s.state.Store(int32(Stepping))
	s.Resize(40)
	if s.Count() != 10 {
		t.Fatalf("count = %d, resize must wait for the next step", s.Count())
	}
	s.state.Store(int32(Idle))

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})
	if s.Count() != 40 {
		t.Errorf("count = %d after step, want 40", s.Count())
	}
	if s.Grid().Total() != 40 {
		t.Errorf("histogram total = %d, want the resized count", s.Grid().Total())
	}
}

func TestResize_WhenIdleIsImmediate(t *testing.T) {
	s := newTestSim(t, testOptions(100, 10), DefaultParams())
	s.Resize(60)
	if s.Count() != 60 {
		t.Errorf("count = %d, want 60", s.Count())
	}
	s.Resize(500)
	if s.Count() != 100 {
		t.Errorf("count = %d, want clamped to 100", s.Count())
	}
}

func TestSetParams(t *testing.T) {
	s := newTestSim(t, testOptions(10, 10), DefaultParams())

	bad := DefaultParams()
	bad.SmoothingRadius = -1
	if err := s.SetParams(bad); !errors.Is(err, ErrDegenerateConfig) {
		t.Errorf("err = %v, want ErrDegenerateConfig", err)
	}
	if s.Params().SmoothingRadius != DefaultParams().SmoothingRadius {
		t.Error("rejected params must not replace the current record")
	}

	good := DefaultParams()
	good.Gravity = 3
	if err := s.SetParams(good); err != nil {
		t.Fatal(err)
	}
	if s.Params().Gravity != 3 {
		t.Errorf("gravity = %v, want 3", s.Params().Gravity)
	}
}

func TestClampDT(t *testing.T) {
	p := DefaultParams()
	tests := []struct{ in, want float64 }{
		{0.001, 0.001},
		{p.DTMax, p.DTMax},
		{10, p.DTMax},
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := p.ClampDT(tt.in); got != tt.want {
			t.Errorf("ClampDT(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type recordingTimer struct{ phases []string }

func (r *recordingTimer) StartPhase(name string) { r.phases = append(r.phases, name) }

func TestStep_PassOrder(t *testing.T) {
	s := newTestSim(t, testOptions(10, 10), DefaultParams())
	rec := &recordingTimer{}
	s.SetPhaseTimer(rec)

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})

	if len(rec.phases) != len(Phases) {
		t.Fatalf("phases = %v, want %v", rec.phases, Phases)
	}
	for i, name := range Phases {
		if rec.phases[i] != name {
			t.Errorf("phase %d = %s, want %s", i, rec.phases[i], name)
		}
	}
}

func TestLoad_RestoresState(t *testing.T) {
	s := newTestSim(t, testOptions(10, 4), quietParams())
	pos := []r2.Vec{{X: 0.1}, {X: -0.1}, {Y: 0.2}}
	vel := []r2.Vec{{Y: 1}, {}, {X: -1}}

	if err := s.Load(pos, vel, 120, 2.5); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("count = %d, want 3", s.Count())
	}
	if s.Frame() != 120 || s.Time() != 2.5 {
		t.Errorf("frame/time = %d/%v, want 120/2.5", s.Frame(), s.Time())
	}
	for i := range pos {
		if s.Positions()[i] != pos[i] || s.Velocities()[i] != vel[i] {
			t.Errorf("particle %d = %v/%v, want %v/%v", i, s.Positions()[i], s.Velocities()[i], pos[i], vel[i])
		}
	}

	s.Step(StepInput{DT: frameDT, BoundaryLimit: 1})
	if s.Grid().Total() != 3 {
		t.Errorf("histogram total = %d after load, want 3", s.Grid().Total())
	}
}

func TestLoad_Errors(t *testing.T) {
	s := newTestSim(t, testOptions(2, 2), DefaultParams())

	tests := []struct {
		name     string
		pos, vel []r2.Vec
		want     error
	}{
		{"length mismatch", make([]r2.Vec, 2), make([]r2.Vec, 1), ErrDegenerateConfig},
		{"over capacity", make([]r2.Vec, 3), make([]r2.Vec, 3), ErrCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Load(tt.pos, tt.vel, 0, 0); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if s.Count() != 2 {
				t.Errorf("count = %d, failed load must keep state", s.Count())
			}
		})
	}

	s.state.Store(int32(Stepping))
	if err := s.Load(nil, nil, 0, 0); err == nil {
		t.Error("expected error loading while stepping")
	}
	s.state.Store(int32(Idle))
}
