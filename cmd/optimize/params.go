// Package main provides CMA-ES calibration of the fluid parameters.
package main

import (
	"github.com/pthm-cable/fluid/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Bounds follow the interactive slider ranges where one exists.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "gas_constant", Path: "fluid.gas_constant", Min: 0.1, Max: 10, Default: 1.0},
			{Name: "viscosity_constant", Path: "fluid.viscosity_constant", Min: 0, Max: 2, Default: 0.25},
			{Name: "pressure_multiplier", Path: "fluid.pressure_multiplier", Min: 0.0005, Max: 0.01, Default: 0.01},
			{Name: "surface_tension", Path: "fluid.surface_tension", Min: 0, Max: 1000, Default: 80},
			{Name: "boundary_stiffness", Path: "fluid.boundary_stiffness", Min: 500, Max: 10000, Default: 1200},
			{Name: "boundary_damping", Path: "fluid.boundary_damping", Min: 0.1, Max: 1, Default: 0.75},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// fields returns pointers to the config fields in Specs order.
func fields(cfg *config.Config) []*float64 {
	return []*float64{
		&cfg.Fluid.GasConstant,
		&cfg.Fluid.ViscosityConstant,
		&cfg.Fluid.PressureMultiplier,
		&cfg.Fluid.SurfaceTension,
		&cfg.Fluid.BoundaryStiffness,
		&cfg.Fluid.BoundaryDamping,
	}
}

// ApplyToConfig applies clamped parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, f := range fields(cfg) {
		*f = clamped[i]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	fs := fields(cfg)
	v := make([]float64, len(fs))
	for i, f := range fs {
		v[i] = *f
	}
	return v
}
