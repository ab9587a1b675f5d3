package renderer

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is a precomputed colour ramp sampled by a value in [0, 1].
type Palette struct {
	table []color.RGBA
}

// DensityStops runs from calm blue through cyan to white for compressed fluid.
var DensityStops = []string{"#0b2e6f", "#1f6fd1", "#35c3e8", "#b8f2ff", "#ffffff"}

// SpeedStops runs from dark violet to hot orange.
var SpeedStops = []string{"#1b0c3f", "#6a1b9a", "#d84315", "#ffb300", "#fff59d"}

// NewPalette blends the hex stops in CIE L*a*b* space into a table of size entries.
// Invalid hex stops render as black.
func NewPalette(stops []string, size int) *Palette {
	if size < 2 {
		size = 2
	}
	cols := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			c = colorful.Color{}
		}
		cols[i] = c
	}

	p := &Palette{table: make([]color.RGBA, size)}
	for i := range p.table {
		t := float64(i) / float64(size-1)
		p.table[i] = toRGBA(sampleStops(cols, t), 255)
	}
	return p
}

// sampleStops interpolates evenly spaced stops at t.
func sampleStops(cols []colorful.Color, t float64) colorful.Color {
	switch len(cols) {
	case 0:
		return colorful.Color{}
	case 1:
		return cols[0]
	}
	pos := t * float64(len(cols)-1)
	i := min(int(pos), len(cols)-2)
	return cols[i].BlendLab(cols[i+1], pos-float64(i)).Clamped()
}

// At returns the colour for t, clamped to [0, 1]. NaN maps to the low end.
func (p *Palette) At(t float64) color.RGBA {
	if !(t > 0) {
		return p.table[0]
	}
	if t >= 1 {
		return p.table[len(p.table)-1]
	}
	return p.table[int(t*float64(len(p.table)-1))]
}

// Size returns the number of entries in the table.
func (p *Palette) Size() int { return len(p.table) }

func toRGBA(c colorful.Color, alpha uint8) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}
}

// Normalize maps v from [lo, hi] onto [0, 1] without clamping.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// Fade scales a colour's alpha.
func Fade(c color.RGBA, alpha float64) color.RGBA {
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, alpha))))
	return c
}
