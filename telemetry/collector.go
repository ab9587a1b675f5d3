package telemetry

// Collector accumulates frame samples and host events within time windows
// and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartFrame int64
	elapsed          float64
	kinetic          []float64
	speedMax         float64
	last             FrameStats
	frames           int

	// Event counters for current window
	resizes       int
	paramChanges  int
	pointerFrames int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// Record adds one frame's sample. dt is the frame delta in seconds.
func (c *Collector) Record(fs FrameStats, dt float64, pointerActive bool) {
	if c.frames == 0 {
		c.windowStartFrame = fs.Frame
	}
	c.frames++
	c.elapsed += dt
	c.kinetic = append(c.kinetic, fs.KineticEnergy)
	c.speedMax = max(c.speedMax, fs.Speed.Max)
	c.last = fs
	if pointerActive {
		c.pointerFrames++
	}
}

// RecordResize records a particle count change.
func (c *Collector) RecordResize() {
	c.resizes++
}

// RecordParamChange records an edit of the parameter record.
func (c *Collector) RecordParamChange() {
	c.paramChanges++
}

// ShouldFlush returns true once the current window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.frames > 0 && c.elapsed >= c.windowDurationSec
}

// Flush produces WindowStats for the current window and starts a new one.
func (c *Collector) Flush() WindowStats {
	fs := c.last
	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   fs.Frame,
		SimTimeSec:       fs.Time,
		Frames:           c.frames,
		Particles:        fs.Count,

		DensityMean:  fs.Density.Mean,
		DensityStd:   fs.Density.Std,
		DensityP10:   fs.Density.P10,
		DensityP90:   fs.Density.P90,
		DensityMax:   fs.Density.Max,
		PressureMean: fs.Pressure.Mean,
		PressureMax:  fs.Pressure.Max,

		SpeedMean:         fs.Speed.Mean,
		SpeedP90:          fs.Speed.P90,
		SpeedMax:          c.speedMax,
		KineticEnergy:     fs.KineticEnergy,
		KineticEnergyMean: meanOf(c.kinetic),
		CentroidX:         fs.Centroid.X,
		CentroidY:         fs.Centroid.Y,

		OccupiedCells: fs.OccupiedCells,
		MaxCellCount:  fs.MaxCellCount,
		CellTotal:     fs.CellTotal,
		Outside:       fs.Outside,

		Resizes:       c.resizes,
		ParamChanges:  c.paramChanges,
		PointerFrames: c.pointerFrames,
	}

	c.elapsed = 0
	c.kinetic = c.kinetic[:0]
	c.speedMax = 0
	c.frames = 0
	c.resizes = 0
	c.paramChanges = 0
	c.pointerFrames = 0

	return stats
}

// WindowDurationSec returns the configured window length.
func (c *Collector) WindowDurationSec() float64 {
	return c.windowDurationSec
}
