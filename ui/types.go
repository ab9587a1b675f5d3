// Package ui provides a descriptor-driven UI for the simulation.
// Parameter sliders are defined through metadata next to the parameter
// record, so the panel layout follows the record instead of hard-coding it.
package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

// SliderSpec defines how a single parameter is edited.
type SliderSpec struct {
	ID     string  // Unique identifier for the field
	Label  string  // Display label
	Min    float64 // Slider range
	Max    float64
	Format string // Printf format for the value readout
	Get    func(*fluid.Params) float64
	Set    func(*fluid.Params, float64)
}

// ParamSliders returns the editable parameters in panel order.
func ParamSliders() []SliderSpec {
	return []SliderSpec{
		{
			ID: "gravity", Label: "Gravity", Min: 0, Max: 10, Format: "%.2f",
			Get: func(p *fluid.Params) float64 { return p.Gravity },
			Set: func(p *fluid.Params, v float64) { p.Gravity = v },
		},
		{
			ID: "rest_density", Label: "Rest Density", Min: 0, Max: 10, Format: "%.2f",
			Get: func(p *fluid.Params) float64 { return p.RestDensity },
			Set: func(p *fluid.Params, v float64) { p.RestDensity = v },
		},
		{
			ID: "gas_constant", Label: "Gas Constant", Min: 0, Max: 10, Format: "%.2f",
			Get: func(p *fluid.Params) float64 { return p.GasConstant },
			Set: func(p *fluid.Params, v float64) { p.GasConstant = v },
		},
		{
			ID: "boundary_stiffness", Label: "Boundary Stiffness", Min: 500, Max: 10000, Format: "%.0f",
			Get: func(p *fluid.Params) float64 { return p.BoundaryStiffness },
			Set: func(p *fluid.Params, v float64) { p.BoundaryStiffness = v },
		},
		{
			ID: "boundary_damping", Label: "Boundary Damping", Min: 0.1, Max: 1, Format: "%.2f",
			Get: func(p *fluid.Params) float64 { return p.BoundaryDamping },
			Set: func(p *fluid.Params, v float64) { p.BoundaryDamping = v },
		},
		{
			ID: "viscosity_constant", Label: "Viscosity Const", Min: 0, Max: 2, Format: "%.3f",
			Get: func(p *fluid.Params) float64 { return p.ViscosityConstant },
			Set: func(p *fluid.Params, v float64) { p.ViscosityConstant = v },
		},
		{
			ID: "pressure_multiplier", Label: "Pressure Multiplier", Min: 0, Max: 0.01, Format: "%.4f",
			Get: func(p *fluid.Params) float64 { return p.PressureMultiplier },
			Set: func(p *fluid.Params, v float64) { p.PressureMultiplier = v },
		},
		{
			ID: "surface_tension", Label: "Surface Tension", Min: 0, Max: 1000, Format: "%.0f",
			Get: func(p *fluid.Params) float64 { return p.SurfaceTension },
			Set: func(p *fluid.Params, v float64) { p.SurfaceTension = v },
		},
	}
}

// Clamp restricts v to the slider range.
func (s SliderSpec) Clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// CountToSlider maps a particle count in [1, maxCount] onto a logarithmic
// slider position in [0, 1].
func CountToSlider(count, maxCount int) float64 {
	if maxCount <= 1 || count <= 1 {
		return 0
	}
	if count >= maxCount {
		return 1
	}
	return math.Log(float64(count)) / math.Log(float64(maxCount))
}

// SliderToCount is the inverse of CountToSlider, rounded to a whole count.
func SliderToCount(t float64, maxCount int) int {
	if maxCount <= 1 {
		return max(maxCount, 0)
	}
	t = math.Max(0, math.Min(1, t))
	n := int(math.Round(math.Exp(t * math.Log(float64(maxCount)))))
	return max(1, min(n, maxCount))
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillHigh:    rl.Color{R: 200, G: 100, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     70,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
