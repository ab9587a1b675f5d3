package fluid

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultGridDim is the number of cells along each axis.
const DefaultGridDim = 64

// MaxGridDim bounds the cells per axis so dim² tables stay allocatable.
const MaxGridDim = 4096

// Grid is a uniform gridDim×gridDim partition of the square domain
// [-halfExtent, halfExtent]². Count builds a per-cell occupancy histogram;
// BuildIndex turns it into a cell-ordered particle table for neighbour search.
type Grid struct {
	dim      int
	min      r2.Vec
	cellSize float64

	counts []uint32

	// Neighbour index: particles of cell c are cellParticles[cellStart[c]:cellStart[c+1]].
	cellStart     []int
	cellParticles []int32
	cellOf        []int32
	cursor        []int
}

// NewGrid creates a grid over [-halfExtent, halfExtent]² with capacity for
// maxParticles entries in the neighbour index.
func NewGrid(dim int, halfExtent float64, maxParticles int) (*Grid, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: grid dimension %d", ErrDegenerateConfig, dim)
	}
	if !(halfExtent > 0) || math.IsInf(halfExtent, 0) {
		return nil, fmt.Errorf("%w: domain half extent %v", ErrDegenerateConfig, halfExtent)
	}
	if maxParticles < 0 {
		return nil, fmt.Errorf("%w: max particles %d", ErrCapacity, maxParticles)
	}
	if dim > MaxGridDim {
		return nil, fmt.Errorf("%w: grid dimension %d exceeds %d", ErrAllocation, dim, MaxGridDim)
	}
	if maxParticles > MaxStoreCapacity {
		return nil, fmt.Errorf("%w: max particles %d exceeds %d", ErrAllocation, maxParticles, MaxStoreCapacity)
	}
	cells := dim * dim
	return &Grid{
		dim:           dim,
		min:           r2.Vec{X: -halfExtent, Y: -halfExtent},
		cellSize:      2 * halfExtent / float64(dim),
		counts:        make([]uint32, cells),
		cellStart:     make([]int, cells+1),
		cellParticles: make([]int32, maxParticles),
		cellOf:        make([]int32, maxParticles),
		cursor:        make([]int, cells),
	}, nil
}

// Dim returns the number of cells along each axis.
func (g *Grid) Dim() int { return g.dim }

// CellSize returns the edge length of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// HalfExtent returns the domain half-extent the grid covers.
func (g *Grid) HalfExtent() float64 { return -g.min.X }

// Counts returns the per-cell histogram from the last Count pass.
func (g *Grid) Counts() []uint32 { return g.counts }

// Total returns the sum of all cell counts.
func (g *Grid) Total() int {
	total := 0
	for _, c := range g.counts {
		total += int(c)
	}
	return total
}

// cellCoord returns the clamped column or row for one axis.
func (g *Grid) cellCoord(v, lo float64) int {
	c := math.Floor((v - lo) / g.cellSize)
	// NaN positions land in cell 0 rather than indexing out of bounds.
	if !(c >= 0) {
		return 0
	}
	if c >= float64(g.dim) {
		return g.dim - 1
	}
	return int(c)
}

// CellIndex maps a position to its flat cell index, clamping positions
// outside the domain to the nearest edge cell.
func (g *Grid) CellIndex(p r2.Vec) int {
	col := g.cellCoord(p.X, g.min.X)
	row := g.cellCoord(p.Y, g.min.Y)
	return col + g.dim*row
}

// Clear resets every cell count to zero.
func (g *Grid) Clear(pool *Pool) {
	pool.Run(len(g.counts), func(start, end, _ int) {
		clear(g.counts[start:end])
	})
}

// Count bins every position and atomically increments its cell.
func (g *Grid) Count(pool *Pool, positions []r2.Vec) {
	pool.Run(len(positions), func(start, end, _ int) {
		for i := start; i < end; i++ {
			c := g.CellIndex(positions[i])
			g.cellOf[i] = int32(c)
			atomic.AddUint32(&g.counts[c], 1)
		}
	})
}

// BuildIndex computes per-cell start offsets as an exclusive prefix sum of
// the counts, then scatters particle indices into cell order. Within a cell
// particles stay in ascending index order, so neighbour visits are
// deterministic. Must follow Count for the same positions.
func (g *Grid) BuildIndex(n int) {
	offset := 0
	for c, cnt := range g.counts {
		g.cellStart[c] = offset
		g.cursor[c] = offset
		offset += int(cnt)
	}
	g.cellStart[len(g.counts)] = offset

	for i := 0; i < n; i++ {
		c := g.cellOf[i]
		g.cellParticles[g.cursor[c]] = int32(i)
		g.cursor[c]++
	}
}

// CellParticles returns the indexed particles of cell c.
func (g *Grid) CellParticles(c int) []int32 {
	return g.cellParticles[g.cellStart[c]:g.cellStart[c+1]]
}

// ForEachCandidate calls fn for every indexed particle in the cells that can
// hold a neighbour within radius of p. Callers still test the distance.
func (g *Grid) ForEachCandidate(p r2.Vec, radius float64, fn func(j int)) {
	reach := int(math.Ceil(radius / g.cellSize))
	col := g.cellCoord(p.X, g.min.X)
	row := g.cellCoord(p.Y, g.min.Y)

	c0, c1 := max(col-reach, 0), min(col+reach, g.dim-1)
	r0, r1 := max(row-reach, 0), min(row+reach, g.dim-1)

	for r := r0; r <= r1; r++ {
		base := r * g.dim
		for c := c0; c <= c1; c++ {
			for _, j := range g.CellParticles(base + c) {
				fn(int(j))
			}
		}
	}
}
