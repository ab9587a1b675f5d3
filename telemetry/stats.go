package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/fluid/fluid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Distribution summarises a sample of values.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
	Max  float64
}

// ComputeDistribution sorts values in place and summarises them.
// Returns the zero Distribution for an empty slice.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sort.Float64s(values)

	var d Distribution
	if len(values) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	} else {
		d.Mean = values[0]
	}
	d.P10 = stat.Quantile(0.1, stat.Empirical, values, nil)
	d.P50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	d.P90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	d.Max = values[len(values)-1]
	return d
}

// FrameStats is a point-in-time summary of the particle state after a step.
type FrameStats struct {
	Frame int64
	Time  float64
	Count int

	Density  Distribution
	Pressure Distribution
	Speed    Distribution

	KineticEnergy float64
	Centroid      r2.Vec

	// Grid occupancy from the last count pass
	OccupiedCells int
	MaxCellCount  int
	CellTotal     int // histogram sum, equals Count after a step

	// Particles beyond the boundary limit (soft walls allow overshoot)
	Outside int
}

// Sampler computes FrameStats, reusing its scratch buffers between frames.
type Sampler struct {
	density  []float64
	pressure []float64
	speed    []float64
}

// Sample summarises the simulation's last completed step.
func (s *Sampler) Sample(sim *fluid.Simulation, boundaryLimit float64) FrameStats {
	n := sim.Count()
	fs := FrameStats{Frame: sim.Frame(), Time: sim.Time(), Count: n}

	s.density = append(s.density[:0], sim.Densities()...)
	s.pressure = append(s.pressure[:0], sim.Pressures()...)
	s.speed = s.speed[:0]

	mass := sim.Params().ParticleMass
	var sum r2.Vec
	for i, v := range sim.Velocities() {
		speed := r2.Norm(v)
		s.speed = append(s.speed, speed)
		fs.KineticEnergy += 0.5 * mass * speed * speed

		x := sim.Positions()[i]
		sum = r2.Add(sum, x)
		if math.Abs(x.X) > boundaryLimit || math.Abs(x.Y) > boundaryLimit {
			fs.Outside++
		}
	}
	if n > 0 {
		fs.Centroid = r2.Scale(1/float64(n), sum)
	}

	fs.Density = ComputeDistribution(s.density)
	fs.Pressure = ComputeDistribution(s.pressure)
	fs.Speed = ComputeDistribution(s.speed)

	for _, c := range sim.Grid().Counts() {
		if c > 0 {
			fs.OccupiedCells++
		}
		fs.MaxCellCount = max(fs.MaxCellCount, int(c))
		fs.CellTotal += int(c)
	}
	return fs
}

// LogValue implements slog.LogValuer for structured logging.
func (fs FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", fs.Frame),
		slog.Int("count", fs.Count),
		slog.Float64("density_mean", fs.Density.Mean),
		slog.Float64("density_max", fs.Density.Max),
		slog.Float64("pressure_mean", fs.Pressure.Mean),
		slog.Float64("speed_max", fs.Speed.Max),
		slog.Float64("kinetic_energy", fs.KineticEnergy),
		slog.Int("occupied_cells", fs.OccupiedCells),
		slog.Int("max_cell_count", fs.MaxCellCount),
		slog.Int("cell_total", fs.CellTotal),
	)
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Frames           int     `csv:"frames"`

	// Particle count at window end
	Particles int `csv:"particles"`

	// Density and pressure distribution (sampled at window end)
	DensityMean  float64 `csv:"density_mean"`
	DensityStd   float64 `csv:"density_std"`
	DensityP10   float64 `csv:"density_p10"`
	DensityP90   float64 `csv:"density_p90"`
	DensityMax   float64 `csv:"density_max"`
	PressureMean float64 `csv:"pressure_mean"`
	PressureMax  float64 `csv:"pressure_max"`

	// Motion
	SpeedMean         float64 `csv:"speed_mean"`
	SpeedP90          float64 `csv:"speed_p90"`
	SpeedMax          float64 `csv:"speed_max"`         // max over the whole window
	KineticEnergy     float64 `csv:"kinetic_energy"`    // at window end
	KineticEnergyMean float64 `csv:"kinetic_energy_mean"`
	CentroidX         float64 `csv:"centroid_x"`
	CentroidY         float64 `csv:"centroid_y"`

	// Grid occupancy
	OccupiedCells int `csv:"occupied_cells"`
	MaxCellCount  int `csv:"max_cell_count"`
	CellTotal     int `csv:"cell_total"`
	Outside       int `csv:"outside"`

	// Host events during window
	Resizes       int `csv:"resizes"`
	ParamChanges  int `csv:"param_changes"`
	PointerFrames int `csv:"pointer_frames"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy_mean", s.KineticEnergyMean),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("outside", s.Outside),
		slog.Int("resizes", s.Resizes),
	)
}

// LogStats outputs the stats via slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// meanOf returns the mean of a non-empty series, or 0.
func meanOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return floats.Sum(series) / float64(len(series))
}
