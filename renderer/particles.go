package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/camera"
)

// ColorMode selects the quantity mapped onto the particle palette.
type ColorMode int

const (
	ColorDensity ColorMode = iota
	ColorSpeed
)

func (m ColorMode) String() string {
	if m == ColorSpeed {
		return "speed"
	}
	return "density"
}

// Next cycles to the following mode.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % 2
}

// ParticleRenderer draws particles as small discs coloured by density or speed.
type ParticleRenderer struct {
	Mode ColorMode

	// Disc radius in simulation units
	Radius float64

	density *Palette
	speed   *Palette
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(radius float64) *ParticleRenderer {
	return &ParticleRenderer{
		Radius:  radius,
		density: NewPalette(DensityStops, 256),
		speed:   NewPalette(SpeedStops, 256),
	}
}

// ParticleView is the per-frame data the renderer reads.
type ParticleView struct {
	Positions   []r2.Vec
	Velocities  []r2.Vec
	Densities   []float64
	RestDensity float64
	MaxSpeed    float64
}

// Draw renders all particles.
func (r *ParticleRenderer) Draw(cam *camera.Camera, v ParticleView) {
	radius := max(float32(r.Radius)*cam.PixelsPerUnit(), 1)

	for i, p := range v.Positions {
		var t float64
		switch r.Mode {
		case ColorSpeed:
			t = Normalize(r2.Norm(v.Velocities[i]), 0, v.MaxSpeed)
		default:
			// Rest density sits in the middle of the ramp.
			t = Normalize(v.Densities[i], 0, 2*v.RestDensity)
		}
		sx, sy := cam.SimToScreen(p.X, p.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, r.paletteFor().At(t))
	}
}

func (r *ParticleRenderer) paletteFor() *Palette {
	if r.Mode == ColorSpeed {
		return r.speed
	}
	return r.density
}
