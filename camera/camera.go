// Package camera maps between screen pixels and simulation coordinates.
package camera

// Scale limits applied when the window is resized.
const (
	MinScale = 0.5
	MaxScale = 2.0
)

// Camera controls the viewport into the simulation domain.
//
// The simulation square [-L, L]² is drawn into the largest centred square
// that fits the viewport, with L = Scale(). Scale follows the viewport's
// short side relative to its size at startup, so enlarging the window shows
// more of the domain at the same pixel density.
type Camera struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Short side of the viewport at creation
	InitialMin float32
}

// New creates a camera for a viewport of the given size.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		ViewportW:  viewportW,
		ViewportH:  viewportH,
		InitialMin: min(viewportW, viewportH),
	}
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Scale returns the current simulation scale, clamped to [MinScale, MaxScale].
func (c *Camera) Scale() float32 {
	if c.InitialMin <= 0 {
		return 1
	}
	return clamp(min(c.ViewportW, c.ViewportH)/c.InitialMin, MinScale, MaxScale)
}

// BoundaryLimit returns the half-extent confining particles this frame.
func (c *Camera) BoundaryLimit() float64 {
	return float64(c.Scale())
}

// square returns the origin and side of the drawn simulation square.
func (c *Camera) square() (x0, y0, side float32) {
	side = min(c.ViewportW, c.ViewportH)
	return (c.ViewportW - side) / 2, (c.ViewportH - side) / 2, side
}

// PixelsPerUnit returns how many pixels one simulation unit spans.
func (c *Camera) PixelsPerUnit() float32 {
	_, _, side := c.square()
	return side / (2 * c.Scale())
}

// ScreenToSim converts a screen position to simulation coordinates.
// inside reports whether the position lies within the drawn square.
func (c *Camera) ScreenToSim(sx, sy float32) (x, y float64, inside bool) {
	x0, y0, side := c.square()
	if side <= 0 {
		return 0, 0, false
	}
	nx := (sx - x0) / side
	ny := (sy - y0) / side
	inside = nx >= 0 && nx <= 1 && ny >= 0 && ny <= 1

	// Screen y grows downward, simulation y grows upward.
	l := c.Scale()
	x = float64(nx*2*l - l)
	y = float64(l - ny*2*l)
	return x, y, inside
}

// SimToScreen converts simulation coordinates to a screen position.
func (c *Camera) SimToScreen(x, y float64) (sx, sy float32) {
	x0, y0, side := c.square()
	l := c.Scale()
	nx := (float32(x) + l) / (2 * l)
	ny := (l - float32(y)) / (2 * l)
	return x0 + nx*side, y0 + ny*side
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
