package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/fluid"
)

// DensityField renders the grid occupancy histogram as a smoothed texture
// behind the particles. Uses CPU-side blending so the field does not flicker
// between frames.
type DensityField struct {
	tex  rl.Texture2D
	dim  int
	half float64

	// Double-buffered data for smooth CPU-side blending
	current []float32 // target values
	display []float32 // currently displayed
	pixels  []color.RGBA

	palette     *Palette
	initialized bool
}

// NewDensityField creates a density field renderer.
func NewDensityField() *DensityField {
	return &DensityField{palette: NewPalette(DensityStops, 256)}
}

// Init allocates the texture (must be called after raylib window is created).
func (d *DensityField) Init(dim int, halfExtent float64) {
	if d.initialized {
		return
	}
	d.dim = dim
	d.half = halfExtent

	img := rl.GenImageColor(dim, dim, rl.Blank)
	d.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(d.tex, rl.FilterBilinear)

	d.current = make([]float32, dim*dim)
	d.display = make([]float32, dim*dim)
	d.pixels = make([]color.RGBA, dim*dim)
	d.initialized = true
}

// Update sets the target field from the grid's last count pass, normalised
// against the mean occupancy of a cell at the given particle count.
func (d *DensityField) Update(g *fluid.Grid, count int) {
	if !d.initialized {
		d.Init(g.Dim(), g.HalfExtent())
	}
	counts := g.Counts()
	scale := float32(0)
	if count > 0 {
		scale = 1 / (4 * float32(count) / float32(len(counts)))
	}

	// Texture rows run top to bottom; grid rows run bottom to top.
	for row := 0; row < d.dim; row++ {
		src := counts[row*d.dim : (row+1)*d.dim]
		dst := d.current[(d.dim-1-row)*d.dim : (d.dim-row)*d.dim]
		for col, c := range src {
			dst[col] = min(float32(c)*scale, 1)
		}
	}
}

// Draw blends toward the target and renders the field over the grid's square.
func (d *DensityField) Draw(cam *camera.Camera, dt float32) {
	if !d.initialized {
		return
	}

	blendRate := min(8*dt, 1)
	for i := range d.display {
		d.display[i] += (d.current[i] - d.display[i]) * blendRate
		v := d.display[i]
		d.pixels[i] = Fade(d.palette.At(float64(v)), float64(v)*0.6)
	}
	rl.UpdateTexture(d.tex, d.pixels)

	x0, y0 := cam.SimToScreen(-d.half, d.half)
	x1, y1 := cam.SimToScreen(d.half, -d.half)
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(d.dim), Height: float32(d.dim)}
	dst := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawTexturePro(d.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees resources.
func (d *DensityField) Unload() {
	if d.initialized {
		rl.UnloadTexture(d.tex)
		d.initialized = false
	}
}
