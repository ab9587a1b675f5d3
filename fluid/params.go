package fluid

import (
	"fmt"
	"math"
)

// Params is the tunable parameter record read by every pass.
// The driver copies it once at the start of each frame, so edits made
// between frames never tear mid-pipeline.
type Params struct {
	Gravity            float64 // downward acceleration
	RestDensity        float64 // ρ₀ in the equation of state
	GasConstant        float64 // k in the equation of state
	SmoothingRadius    float64 // kernel support h
	ParticleMass       float64 // uniform particle mass m
	ViscosityConstant  float64
	BoundaryStiffness  float64
	BoundaryDamping    float64
	PressureMultiplier float64
	SurfaceTension     float64
	SurfaceThreshold   float64 // colour-field gradient magnitude that activates surface tension

	PointerStrength float64 // positive attracts, negative repels
	PointerRadius   float64

	BoundaryRadiusFactor float64 // boundary radius = SmoothingRadius * this
	MaxSpeed             float64 // velocity magnitude clamp (0 = unclamped)
	DTMax                float64 // integration step ceiling
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		Gravity:              9.8,
		RestDensity:          10.0,
		GasConstant:          1.0,
		SmoothingRadius:      0.2,
		ParticleMass:         0.01,
		ViscosityConstant:    0.25,
		BoundaryStiffness:    1200.0,
		BoundaryDamping:      0.75,
		PressureMultiplier:   0.01,
		SurfaceTension:       80.0,
		SurfaceThreshold:     1e-8,
		PointerStrength:      20.0,
		PointerRadius:        0.35,
		BoundaryRadiusFactor: 0.000005,
		MaxSpeed:             10.0,
		DTMax:                0.008,
	}
}

// Validate rejects parameter sets that leave the kernels undefined.
func (p Params) Validate() error {
	if !(p.SmoothingRadius > 0) || math.IsInf(p.SmoothingRadius, 0) {
		return fmt.Errorf("%w: smoothing radius %v", ErrDegenerateConfig, p.SmoothingRadius)
	}
	if !(p.ParticleMass > 0) || math.IsInf(p.ParticleMass, 0) {
		return fmt.Errorf("%w: particle mass %v", ErrDegenerateConfig, p.ParticleMass)
	}
	if !(p.DTMax > 0) {
		return fmt.Errorf("%w: dt max %v", ErrDegenerateConfig, p.DTMax)
	}
	if p.MaxSpeed < 0 {
		return fmt.Errorf("%w: max speed %v", ErrDegenerateConfig, p.MaxSpeed)
	}
	if p.PointerRadius < 0 {
		return fmt.Errorf("%w: pointer radius %v", ErrDegenerateConfig, p.PointerRadius)
	}
	return nil
}

// ClampDT returns the step actually used for integration.
func (p Params) ClampDT(dt float64) float64 {
	if !(dt > 0) {
		return 0
	}
	return math.Min(dt, p.DTMax)
}
