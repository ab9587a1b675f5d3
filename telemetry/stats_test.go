package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/fluid/fluid"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestComputeDistribution(t *testing.T) {
	values := []float64{7, 3, 10, 1, 5, 9, 2, 8, 4, 6}
	d := ComputeDistribution(values)

	tests := []struct {
		name      string
		got, want float64
	}{
		{"mean", d.Mean, 5.5},
		{"std", d.Std, math.Sqrt(55.0 / 6)},
		{"p10", d.P10, 1},
		{"p50", d.P50, 5},
		{"p90", d.P90, 9},
		{"max", d.Max, 10},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestComputeDistribution_Small(t *testing.T) {
	if d := ComputeDistribution(nil); d != (Distribution{}) {
		t.Errorf("empty distribution = %+v, want zero", d)
	}
	d := ComputeDistribution([]float64{4})
	if d.Mean != 4 || d.Std != 0 || d.P50 != 4 || d.Max != 4 {
		t.Errorf("single value distribution = %+v", d)
	}
}

func newStatsSim(t *testing.T, n int) *fluid.Simulation {
	t.Helper()
	p := fluid.DefaultParams()
	p.Gravity = 0
	sim, err := fluid.New(fluid.Options{
		MaxParticles:     n,
		InitialParticles: n,
		DomainHalfExtent: 1,
		GridDim:          16,
		Workers:          2,
	}, p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sim.Close)
	return sim
}

func TestSampler_SingleParticleAtRest(t *testing.T) {
	sim := newStatsSim(t, 1)
	sim.Step(fluid.StepInput{DT: 1.0 / 60, Time: 0.5, BoundaryLimit: 1})

	var s Sampler
	fs := s.Sample(sim, 1)

	if fs.Count != 1 || fs.Frame != 1 || fs.Time != 0.5 {
		t.Errorf("count/frame/time = %d/%d/%v", fs.Count, fs.Frame, fs.Time)
	}
	if fs.KineticEnergy != 0 {
		t.Errorf("kinetic energy = %v, want 0 at rest", fs.KineticEnergy)
	}
	want := fluid.NewKernels(sim.Params().SmoothingRadius).SelfDensity(sim.Params().ParticleMass)
	if math.Abs(fs.Density.Mean-want) > 1e-12 {
		t.Errorf("density = %v, want self density %v", fs.Density.Mean, want)
	}
	if fs.OccupiedCells != 1 || fs.MaxCellCount != 1 {
		t.Errorf("occupied %d, max cell %d, want 1/1", fs.OccupiedCells, fs.MaxCellCount)
	}
	if fs.CellTotal != fs.Count {
		t.Errorf("cell total = %d, want %d", fs.CellTotal, fs.Count)
	}
	if fs.Outside != 0 {
		t.Errorf("outside = %d, want 0", fs.Outside)
	}
}

func TestSampler_KineticEnergyAndOutside(t *testing.T) {
	sim := newStatsSim(t, 2)
	pos := []r2.Vec{{X: -0.5}, {X: 1.5}}
	vel := []r2.Vec{{X: 2}, {Y: -1}}
	if err := sim.Load(pos, vel, 0, 0); err != nil {
		t.Fatal(err)
	}

	var s Sampler
	fs := s.Sample(sim, 1)

	mass := sim.Params().ParticleMass
	if want := 0.5 * mass * (4 + 1); math.Abs(fs.KineticEnergy-want) > 1e-12 {
		t.Errorf("kinetic energy = %v, want %v", fs.KineticEnergy, want)
	}
	if fs.Outside != 1 {
		t.Errorf("outside = %d, want 1", fs.Outside)
	}
	if fs.Centroid != (r2.Vec{X: 0.5}) {
		t.Errorf("centroid = %v, want (0.5, 0)", fs.Centroid)
	}
	if fs.Speed.Max != 2 {
		t.Errorf("max speed = %v, want 2", fs.Speed.Max)
	}
}

func TestCollector_Windows(t *testing.T) {
	c := NewCollector(0.1)
	if c.ShouldFlush() {
		t.Error("empty collector should not flush")
	}

	for i := 1; i <= 5; i++ {
		fs := FrameStats{
			Frame:         int64(i),
			Count:         100,
			KineticEnergy: float64(i),
			Speed:         Distribution{Max: float64(10 - i)},
		}
		c.Record(fs, 0.025, i%2 == 0)
	}
	c.RecordResize()
	c.RecordParamChange()
	c.RecordParamChange()

	if !c.ShouldFlush() {
		t.Fatal("expected flush after 0.125s of frames")
	}
	w := c.Flush()

	if w.WindowStartFrame != 1 || w.WindowEndFrame != 5 || w.Frames != 5 {
		t.Errorf("window %d..%d over %d frames", w.WindowStartFrame, w.WindowEndFrame, w.Frames)
	}
	if w.KineticEnergyMean != 3 || w.KineticEnergy != 5 {
		t.Errorf("kinetic mean/end = %v/%v, want 3/5", w.KineticEnergyMean, w.KineticEnergy)
	}
	if w.SpeedMax != 9 {
		t.Errorf("speed max = %v, want window max 9", w.SpeedMax)
	}
	if w.Resizes != 1 || w.ParamChanges != 2 || w.PointerFrames != 2 {
		t.Errorf("events resizes=%d params=%d pointer=%d", w.Resizes, w.ParamChanges, w.PointerFrames)
	}

	if c.ShouldFlush() {
		t.Error("collector should reset after flush")
	}
	c.Record(FrameStats{Frame: 6}, 0.2, false)
	if w := c.Flush(); w.WindowStartFrame != 6 || w.Resizes != 0 {
		t.Errorf("second window start %d resizes %d", w.WindowStartFrame, w.Resizes)
	}
}
