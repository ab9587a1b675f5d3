package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// densityEpsilon floors densities used as denominators.
const densityEpsilon = 1e-6

// NeighborSearch selects how the density and force passes find neighbours.
type NeighborSearch string

const (
	// SearchGrid visits only grid cells within the smoothing radius.
	SearchGrid NeighborSearch = "grid"
	// SearchExhaustive scans every active particle (O(n²)).
	SearchExhaustive NeighborSearch = "exhaustive"
)

// ParseNeighborSearch validates a configured search mode. Empty selects the grid.
func ParseNeighborSearch(s string) (NeighborSearch, error) {
	switch NeighborSearch(s) {
	case "", SearchGrid:
		return SearchGrid, nil
	case SearchExhaustive:
		return SearchExhaustive, nil
	}
	return "", fmt.Errorf("%w: neighbor search %q", ErrDegenerateConfig, s)
}

// neighbors enumerates candidate particles for a query point. Candidates are
// a superset of the particles within h; callers test the distance.
type neighbors struct {
	mode NeighborSearch
	grid *Grid
	n    int
	h    float64
}

func (nb neighbors) each(p r2.Vec, fn func(j int)) {
	if nb.mode == SearchExhaustive {
		for j := 0; j < nb.n; j++ {
			fn(j)
		}
		return
	}
	nb.grid.ForEachCandidate(p, nb.h, fn)
}

// computeDensityPressure accumulates ρᵢ = Σⱼ m·W(|xᵢ−xⱼ|, h) over particles
// within h (including i) and derives pᵢ = max(0, k(ρᵢ−ρ₀)). Positions are
// only read, so chunks have no ordering dependency.
func computeDensityPressure(pool *Pool, s *Store, nb neighbors, k Kernels, p *Params) {
	pos := s.Positions()
	density := s.density
	press := s.press
	mass := p.ParticleMass
	gas := p.GasConstant
	rest := p.RestDensity

	pool.Run(len(pos), func(start, end, _ int) {
		for i := start; i < end; i++ {
			xi := pos[i]
			var rho float64
			nb.each(xi, func(j int) {
				d := r2.Sub(xi, pos[j])
				rho += mass * k.Poly6(r2.Norm2(d))
			})
			density[i] = rho
			press[i] = EquationOfState(rho, rest, gas)
		}
	})
}

// EquationOfState is the clamped linear pressure law. Negative pressures
// are clamped to zero so particles never attract through pressure.
func EquationOfState(rho, restDensity, gasConstant float64) float64 {
	return max(0, gasConstant*(rho-restDensity))
}
