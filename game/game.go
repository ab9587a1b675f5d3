// Package game wires the fluid simulation to the window, input, telemetry
// and output layers.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	SnapshotPath   string // restore this snapshot after creation
	Particles      int    // initial particle override (0 = use config)
	Headless       bool
}

// Game holds the simulation and everything the host loop needs around it.
type Game struct {
	cfg  *config.Config
	sim  *fluid.Simulation
	seed int64

	// Host state
	paused      bool
	simTime     float64
	boundary    float64
	pointer     fluid.Pointer
	showDensity bool
	frameMS     float64

	// Telemetry
	logStats      bool
	sampler       telemetry.Sampler
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.FrameStats

	// Rendering (nil when headless)
	camera    *camera.Camera
	particles *renderer.ParticleRenderer
	density   *renderer.DensityField
	controls  *ui.ControlsPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
}

// NewGameWithOptions creates a game. In graphical mode the raylib window
// must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	sim, err := NewSimulation(cfg, opts.Seed, opts.Particles)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:           cfg,
		sim:           sim,
		seed:          opts.Seed,
		boundary:      sim.Options().DomainHalfExtent,
		logStats:      opts.LogStats,
		collector:     telemetry.NewCollector(statsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
	sim.SetPhaseTimer(g.perfCollector)

	if opts.SnapshotPath != "" {
		if err := g.restoreSnapshot(opts.SnapshotPath); err != nil {
			sim.Close()
			return nil, err
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.camera = camera.New(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
		g.boundary = g.camera.BoundaryLimit()
		g.particles = renderer.NewParticleRenderer(particleRadius)
		g.density = renderer.NewDensityField()
		g.controls = ui.NewControlsPanel(10, 70, 300, sim.Capacity())
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(0, 10, perfPanelWidth)
		g.showDensity = true
	}

	slog.Info("simulation created",
		"particles", sim.Count(),
		"capacity", sim.Capacity(),
		"grid_dim", sim.Grid().Dim(),
		"neighbor_search", string(sim.Options().NeighborSearch),
		"seed", opts.Seed,
	)

	return g, nil
}

const (
	// particleRadius is the drawn disc radius in simulation units.
	particleRadius = 0.01

	perfPanelWidth int32 = 260
)

// Update runs one graphical frame: input, then a step using the wall-clock delta.
func (g *Game) Update() {
	g.handleInput()
	dt := float64(rl.GetFrameTime())
	g.frameMS = dt * 1000
	g.simTime = rl.GetTime()
	if g.paused {
		return
	}
	g.step(dt)
}

// UpdateHeadless runs one frame with the configured fixed delta and no input.
func (g *Game) UpdateHeadless() {
	dt := g.cfg.Simulation.FixedDT
	g.simTime += dt
	g.step(dt)
}

// step advances the simulation one frame and feeds telemetry.
func (g *Game) step(dt float64) {
	g.perfCollector.StartFrame()
	g.sim.Step(fluid.StepInput{
		DT:            dt,
		Time:          g.simTime,
		Pointer:       g.pointer,
		BoundaryLimit: g.boundary,
	})
	g.perfCollector.StartPhase(telemetry.PhaseHost)
	g.recordFrame(dt)
	g.perfCollector.EndFrame()
}

// Frame returns the number of completed simulation steps.
func (g *Game) Frame() int64 {
	return g.sim.Frame()
}

// Sim exposes the simulation for tools that drive a Game.
func (g *Game) Sim() *fluid.Simulation {
	return g.sim
}

// Unload flushes output and releases resources.
func (g *Game) Unload() {
	if g.density != nil {
		g.density.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.sim.Close()
}
