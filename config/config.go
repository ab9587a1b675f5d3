// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("config: invalid")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Fluid      FluidConfig      `yaml:"fluid"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds values fixed when the simulation is created.
type SimulationConfig struct {
	MaxParticles     int     `yaml:"max_particles"`
	InitialParticles int     `yaml:"initial_particles"`
	DomainHalfExtent float64 `yaml:"domain_half_extent"` // grid covers [-e, e]²
	GridDim          int     `yaml:"grid_dim"`
	LatticeSpacing   float64 `yaml:"lattice_spacing"`
	SeedRadius       float64 `yaml:"seed_radius"`     // disc radius for particles added at runtime
	NeighborSearch   string  `yaml:"neighbor_search"` // grid | exhaustive
	Workers          int     `yaml:"workers"`         // 0 = GOMAXPROCS
	FixedDT          float64 `yaml:"fixed_dt"`        // frame delta in headless mode
}

// FluidConfig holds the initial values of the tunable parameter record.
type FluidConfig struct {
	Gravity              float64 `yaml:"gravity"`
	RestDensity          float64 `yaml:"rest_density"`
	GasConstant          float64 `yaml:"gas_constant"`
	SmoothingRadius      float64 `yaml:"smoothing_radius"`
	ParticleMass         float64 `yaml:"particle_mass"`
	ViscosityConstant    float64 `yaml:"viscosity_constant"`
	BoundaryStiffness    float64 `yaml:"boundary_stiffness"`
	BoundaryDamping      float64 `yaml:"boundary_damping"`
	PressureMultiplier   float64 `yaml:"pressure_multiplier"`
	SurfaceTension       float64 `yaml:"surface_tension"`
	SurfaceThreshold     float64 `yaml:"surface_threshold"`
	BoundaryRadiusFactor float64 `yaml:"boundary_radius_factor"`
	MaxSpeed             float64 `yaml:"max_speed"`
	DTMax                float64 `yaml:"dt_max"`
}

// PointerConfig holds interactive pointer force settings.
type PointerConfig struct {
	Strength float64 `yaml:"strength"` // positive attracts, negative repels
	Radius   float64 `yaml:"radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds between logged records
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	CellSize  float64 // grid cell edge length
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot start with.
// Initial particle counts above the maximum are left for the simulation to clamp.
func (c *Config) Validate() error {
	s := c.Simulation
	switch {
	case s.MaxParticles < 0:
		return fmt.Errorf("%w: simulation.max_particles %d", ErrInvalid, s.MaxParticles)
	case s.GridDim <= 0:
		return fmt.Errorf("%w: simulation.grid_dim %d", ErrInvalid, s.GridDim)
	case s.DomainHalfExtent <= 0:
		return fmt.Errorf("%w: simulation.domain_half_extent %v", ErrInvalid, s.DomainHalfExtent)
	case s.LatticeSpacing <= 0:
		return fmt.Errorf("%w: simulation.lattice_spacing %v", ErrInvalid, s.LatticeSpacing)
	case c.Fluid.SmoothingRadius <= 0:
		return fmt.Errorf("%w: fluid.smoothing_radius %v", ErrInvalid, c.Fluid.SmoothingRadius)
	case c.Fluid.ParticleMass <= 0:
		return fmt.Errorf("%w: fluid.particle_mass %v", ErrInvalid, c.Fluid.ParticleMass)
	case c.Fluid.DTMax <= 0:
		return fmt.Errorf("%w: fluid.dt_max %v", ErrInvalid, c.Fluid.DTMax)
	}
	switch s.NeighborSearch {
	case "", "grid", "exhaustive":
	default:
		return fmt.Errorf("%w: simulation.neighbor_search %q", ErrInvalid, s.NeighborSearch)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.CellSize = 2 * c.Simulation.DomainHalfExtent / float64(c.Simulation.GridDim)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
