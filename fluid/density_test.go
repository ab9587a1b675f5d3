package fluid

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// runDensity bins the store's particles and runs the density pass.
func runDensity(t *testing.T, s *Store, mode NeighborSearch, p Params) {
	t.Helper()
	pool := NewPool(4)
	defer pool.Stop()

	g, err := NewGrid(DefaultGridDim, 1, s.Capacity())
	if err != nil {
		t.Fatal(err)
	}
	g.Clear(pool)
	g.Count(pool, s.Positions())
	g.BuildIndex(s.Count())

	nb := neighbors{mode: mode, grid: g, n: s.Count(), h: p.SmoothingRadius}
	computeDensityPressure(pool, s, nb, NewKernels(p.SmoothingRadius), &p)
}

func TestDensity_IsolatedParticle(t *testing.T) {
	p := DefaultParams()
	s, _ := NewStore(3, 3, DefaultLatticeSpacing)
	// Separations well beyond h.
	s.Positions()[0] = r2.Vec{X: -0.8, Y: -0.8}
	s.Positions()[1] = r2.Vec{X: 0, Y: 0}
	s.Positions()[2] = r2.Vec{X: 0.8, Y: 0.8}

	for _, mode := range []NeighborSearch{SearchGrid, SearchExhaustive} {
		runDensity(t, s, mode, p)
		want := p.ParticleMass * NewKernels(p.SmoothingRadius).Poly6(0)
		for i, rho := range s.Densities() {
			if rho != want {
				t.Errorf("%s: density[%d] = %v, want exactly %v", mode, i, rho, want)
			}
		}
	}
}

func TestDensity_NeighbourRaisesDensity(t *testing.T) {
	p := DefaultParams()
	s, _ := NewStore(2, 2, DefaultLatticeSpacing)
	s.Positions()[0] = r2.Vec{X: 0, Y: 0}
	s.Positions()[1] = r2.Vec{X: 0.1, Y: 0}

	runDensity(t, s, SearchGrid, p)

	k := NewKernels(p.SmoothingRadius)
	want := p.ParticleMass * (k.Poly6(0) + k.Poly6(0.01))
	for i, rho := range s.Densities() {
		if math.Abs(rho-want) > 1e-12 {
			t.Errorf("density[%d] = %v, want %v", i, rho, want)
		}
	}
}

func TestDensity_GridMatchesExhaustive(t *testing.T) {
	p := DefaultParams()
	const n = 900
	a, _ := NewStore(n, n, 0.04)
	b, _ := NewStore(n, n, 0.04)
	rng := rand.New(rand.NewSource(21))
	for i := 0; i < n; i++ {
		jitter := r2.Vec{X: rng.Float64() * 0.01, Y: rng.Float64() * 0.01}
		a.Positions()[i] = r2.Add(a.Positions()[i], jitter)
		b.Positions()[i] = a.Positions()[i]
	}

	runDensity(t, a, SearchGrid, p)
	runDensity(t, b, SearchExhaustive, p)

	for i := 0; i < n; i++ {
		da, db := a.Densities()[i], b.Densities()[i]
		if math.Abs(da-db) > 1e-9*math.Max(1, db) {
			t.Fatalf("density[%d]: grid %v, exhaustive %v", i, da, db)
		}
	}
}

func TestEquationOfState_ClampsNegativePressure(t *testing.T) {
	tests := []struct {
		rho, rest, k, want float64
	}{
		{12, 10, 2, 4},
		{10, 10, 2, 0},
		{3, 10, 2, 0}, // below rest density: would be attractive, clamped
		{0, 10, 5, 0},
	}
	for _, tt := range tests {
		if got := EquationOfState(tt.rho, tt.rest, tt.k); got != tt.want {
			t.Errorf("EquationOfState(%v, %v, %v) = %v, want %v", tt.rho, tt.rest, tt.k, got, tt.want)
		}
	}
}

func TestDensity_SparseFluidHasZeroPressure(t *testing.T) {
	// The default lattice sits below rest density, so every pressure clamps to zero.
	p := DefaultParams()
	s, _ := NewStore(400, 400, DefaultLatticeSpacing)
	runDensity(t, s, SearchGrid, p)
	for i, pr := range s.Pressures() {
		if s.Densities()[i] < p.RestDensity && pr != 0 {
			t.Errorf("particle %d: density %v below rest but pressure %v", i, s.Densities()[i], pr)
		}
		if pr < 0 {
			t.Errorf("particle %d: negative pressure %v", i, pr)
		}
	}
}
