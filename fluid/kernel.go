package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kernels holds the 2D-normalised smoothing kernels for one radius h.
// Coefficients are computed once per frame instead of per pair.
type Kernels struct {
	H, H2 float64

	poly6     float64 // 4/(πh⁸)
	spiky     float64 // -30/(πh⁵)
	viscosity float64 // 40/(πh⁵)
}

// NewKernels precomputes coefficients for radius h.
func NewKernels(h float64) Kernels {
	h2 := h * h
	h5 := h2 * h2 * h
	h8 := h5 * h2 * h
	return Kernels{
		H:         h,
		H2:        h2,
		poly6:     4 / (math.Pi * h8),
		spiky:     -30 / (math.Pi * h5),
		viscosity: 40 / (math.Pi * h5),
	}
}

// Poly6 evaluates W(r) for squared distance r2. Zero outside h.
func (k Kernels) Poly6(r2 float64) float64 {
	if r2 >= k.H2 {
		return 0
	}
	d := k.H2 - r2
	return k.poly6 * d * d * d
}

// Poly6Grad returns ∇W for the offset rij = xi - xj.
func (k Kernels) Poly6Grad(rij r2.Vec, r2sq float64) r2.Vec {
	if r2sq >= k.H2 {
		return r2.Vec{}
	}
	d := k.H2 - r2sq
	return r2.Scale(-6*k.poly6*d*d, rij)
}

// Poly6Laplacian returns ∇²W in two dimensions.
func (k Kernels) Poly6Laplacian(r2sq float64) float64 {
	if r2sq >= k.H2 {
		return 0
	}
	return -12 * k.poly6 * (k.H2 - r2sq) * (k.H2 - 3*r2sq)
}

// SpikyGrad returns the spiky kernel gradient for offset rij at distance r.
// It points from xi towards xj and vanishes at r = 0 and r >= h.
func (k Kernels) SpikyGrad(rij r2.Vec, r float64) r2.Vec {
	if r <= 0 || r >= k.H {
		return r2.Vec{}
	}
	d := k.H - r
	return r2.Scale(k.spiky*d*d/r, rij)
}

// ViscosityLaplacian returns the Laplacian of the viscosity kernel.
func (k Kernels) ViscosityLaplacian(r float64) float64 {
	if r >= k.H {
		return 0
	}
	return k.viscosity * (k.H - r)
}

// SelfDensity is the density of an isolated particle, m·W(0, h).
func (k Kernels) SelfDensity(mass float64) float64 {
	return mass * k.Poly6(0)
}
