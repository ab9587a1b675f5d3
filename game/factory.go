package game

import (
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
)

// SimOptions builds the construction options from the loaded config.
// particles overrides the configured initial count when positive.
func SimOptions(cfg *config.Config, seed int64, particles int) fluid.Options {
	s := cfg.Simulation
	initial := s.InitialParticles
	if particles > 0 {
		initial = particles
	}
	return fluid.Options{
		MaxParticles:     s.MaxParticles,
		InitialParticles: initial,
		DomainHalfExtent: s.DomainHalfExtent,
		GridDim:          s.GridDim,
		LatticeSpacing:   s.LatticeSpacing,
		SeedRadius:       s.SeedRadius,
		NeighborSearch:   fluid.NeighborSearch(s.NeighborSearch),
		Workers:          s.Workers,
		Seed:             seed,
	}
}

// SimParams builds the initial parameter record from the loaded config.
func SimParams(cfg *config.Config) fluid.Params {
	f := cfg.Fluid
	return fluid.Params{
		Gravity:              f.Gravity,
		RestDensity:          f.RestDensity,
		GasConstant:          f.GasConstant,
		SmoothingRadius:      f.SmoothingRadius,
		ParticleMass:         f.ParticleMass,
		ViscosityConstant:    f.ViscosityConstant,
		BoundaryStiffness:    f.BoundaryStiffness,
		BoundaryDamping:      f.BoundaryDamping,
		PressureMultiplier:   f.PressureMultiplier,
		SurfaceTension:       f.SurfaceTension,
		SurfaceThreshold:     f.SurfaceThreshold,
		PointerStrength:      cfg.Pointer.Strength,
		PointerRadius:        cfg.Pointer.Radius,
		BoundaryRadiusFactor: f.BoundaryRadiusFactor,
		MaxSpeed:             f.MaxSpeed,
		DTMax:                f.DTMax,
	}
}

// NewSimulation creates the simulation described by cfg.
func NewSimulation(cfg *config.Config, seed int64, particles int) (*fluid.Simulation, error) {
	return fluid.New(SimOptions(cfg, seed, particles), SimParams(cfg))
}
