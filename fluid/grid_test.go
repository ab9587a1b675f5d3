package fluid

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func randomPositions(rng *rand.Rand, n int, half float64) []r2.Vec {
	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{
			X: (rng.Float64()*2 - 1) * half,
			Y: (rng.Float64()*2 - 1) * half,
		}
	}
	return pos
}

func TestNewGrid_RejectsDegenerate(t *testing.T) {
	if _, err := NewGrid(0, 1, 10); !errors.Is(err, ErrDegenerateConfig) {
		t.Errorf("dim 0: err = %v", err)
	}
	if _, err := NewGrid(-4, 1, 10); !errors.Is(err, ErrDegenerateConfig) {
		t.Errorf("dim -4: err = %v", err)
	}
	if _, err := NewGrid(8, 0, 10); !errors.Is(err, ErrDegenerateConfig) {
		t.Errorf("extent 0: err = %v", err)
	}
	if _, err := NewGrid(MaxGridDim+1, 1, 10); !errors.Is(err, ErrAllocation) {
		t.Errorf("dim over limit: err = %v", err)
	}
	if _, err := NewGrid(8, 1, MaxStoreCapacity+1); !errors.Is(err, ErrAllocation) {
		t.Errorf("capacity over limit: err = %v", err)
	}
}

func TestGrid_CountSumsToActive(t *testing.T) {
	pool := NewPool(4)
	defer pool.Stop()

	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{0, 1, 100, 5000} {
		g, err := NewGrid(DefaultGridDim, 1, n)
		if err != nil {
			t.Fatal(err)
		}
		pos := randomPositions(rng, n, 0.999)

		g.Clear(pool)
		g.Count(pool, pos)

		if got := g.Total(); got != n {
			t.Errorf("n=%d: sum of cell counts = %d", n, got)
		}
	}
}

func TestGrid_ClearResetsCounts(t *testing.T) {
	pool := NewPool(2)
	defer pool.Stop()

	g, _ := NewGrid(16, 1, 1000)
	pos := randomPositions(rand.New(rand.NewSource(1)), 1000, 1)
	g.Count(pool, pos)
	g.Clear(pool)

	for c, cnt := range g.Counts() {
		if cnt != 0 {
			t.Fatalf("cell %d = %d after clear", c, cnt)
		}
	}

	// Counting twice without a clear would double; clear-then-count must not.
	g.Count(pool, pos)
	g.Clear(pool)
	g.Count(pool, pos)
	if g.Total() != 1000 {
		t.Errorf("total = %d, want 1000", g.Total())
	}
}

func TestGrid_CellIndexClamps(t *testing.T) {
	g, _ := NewGrid(4, 1, 0)
	last := 4*4 - 1

	tests := []struct {
		p    r2.Vec
		want int
	}{
		{r2.Vec{X: -1, Y: -1}, 0},
		{r2.Vec{X: -0.9, Y: -0.9}, 0},
		{r2.Vec{X: 0.1, Y: -0.9}, 2},
		{r2.Vec{X: -0.9, Y: 0.1}, 8},
		{r2.Vec{X: 0.99, Y: 0.99}, last},
		{r2.Vec{X: 1, Y: 1}, last},
		{r2.Vec{X: 50, Y: 50}, last},
		{r2.Vec{X: -50, Y: -50}, 0},
		{r2.Vec{X: 50, Y: -50}, 3},
		{r2.Vec{X: math.NaN(), Y: 0.99}, 12},
	}
	for _, tt := range tests {
		if got := g.CellIndex(tt.p); got != tt.want {
			t.Errorf("CellIndex(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestGrid_OutOfDomainParticlesCounted(t *testing.T) {
	pool := NewPool(1)
	g, _ := NewGrid(8, 1, 4)
	pos := []r2.Vec{{X: 3, Y: 0}, {X: -3, Y: 0}, {X: 0, Y: 7}, {X: 0, Y: -7}}
	g.Count(pool, pos)
	if g.Total() != len(pos) {
		t.Errorf("total = %d, want %d", g.Total(), len(pos))
	}
}

func TestGrid_BuildIndexOrdersByCell(t *testing.T) {
	pool := NewPool(4)
	defer pool.Stop()

	const n = 3000
	g, _ := NewGrid(32, 1, n)
	pos := randomPositions(rand.New(rand.NewSource(9)), n, 1.2)

	g.Clear(pool)
	g.Count(pool, pos)
	g.BuildIndex(n)

	seen := make([]bool, n)
	for c := 0; c < 32*32; c++ {
		members := g.CellParticles(c)
		if len(members) != int(g.Counts()[c]) {
			t.Fatalf("cell %d: %d indexed, %d counted", c, len(members), g.Counts()[c])
		}
		for k, j := range members {
			if g.CellIndex(pos[j]) != c {
				t.Errorf("particle %d indexed in cell %d, belongs to %d", j, c, g.CellIndex(pos[j]))
			}
			if k > 0 && members[k-1] >= j {
				t.Errorf("cell %d not in ascending order", c)
			}
			seen[j] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("particle %d missing from index", i)
		}
	}
}

func TestGrid_CandidatesCoverNeighbours(t *testing.T) {
	pool := NewPool(1)
	const n = 800
	const h = 0.2
	g, _ := NewGrid(DefaultGridDim, 1, n)
	// Include particles outside the domain to exercise clamped cells.
	pos := randomPositions(rand.New(rand.NewSource(5)), n, 1.3)

	g.Count(pool, pos)
	g.BuildIndex(n)

	for i := 0; i < n; i += 7 {
		found := make(map[int]bool)
		g.ForEachCandidate(pos[i], h, func(j int) { found[j] = true })
		for j := 0; j < n; j++ {
			if r2.Norm(r2.Sub(pos[i], pos[j])) < h && !found[j] {
				t.Fatalf("particle %d within h of %d but not a candidate", j, i)
			}
		}
	}
}
