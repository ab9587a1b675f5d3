package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/fluid"
)

var (
	boundaryColor = color.RGBA{R: 90, G: 110, B: 140, A: 200}
	pointerColor  = color.RGBA{R: 255, G: 210, B: 120, A: 160}
)

// DrawBoundary outlines the square particles are confined to this frame.
func DrawBoundary(cam *camera.Camera, limit float64) {
	x0, y0 := cam.SimToScreen(-limit, limit)
	x1, y1 := cam.SimToScreen(limit, -limit)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, boundaryColor)
}

// DrawPointer marks the pointer's influence radius while it is active.
func DrawPointer(cam *camera.Camera, p fluid.Pointer, radius float64) {
	if !p.Active {
		return
	}
	sx, sy := cam.SimToScreen(p.Pos.X, p.Pos.Y)
	rl.DrawCircleLines(int32(sx), int32(sy), float32(radius)*cam.PixelsPerUnit(), pointerColor)
}
