package game

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/ui"
)

// handleInput processes keyboard, mouse and window events for this frame.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.particles.Mode = g.particles.Mode.Next()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.showDensity = !g.showDensity
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	g.pointer = g.readPointer()
}

// handleResize keeps the camera and boundary limit in step with the window.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	g.camera.Resize(float32(w), float32(h))
	g.boundary = g.camera.BoundaryLimit()
	slog.Info("window resized", "width", w, "height", h, "boundary_limit", g.boundary)
}

// readPointer maps the mouse to simulation space. The pointer only pushes
// while the left button is held over the simulation square, inside the
// current boundary and away from the controls panel.
func (g *Game) readPointer() fluid.Pointer {
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		return fluid.Pointer{}
	}
	m := rl.GetMousePosition()
	if g.controls.Contains(m.X, m.Y) {
		return fluid.Pointer{}
	}
	x, y, inside := g.camera.ScreenToSim(m.X, m.Y)
	if !inside || math.Abs(x) > g.boundary || math.Abs(y) > g.boundary {
		return fluid.Pointer{}
	}
	return fluid.Pointer{Active: true, Pos: r2.Vec{X: x, Y: y}}
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	slog.Info("pause toggled", "paused", g.paused, "frame", g.sim.Frame())
}

// applyPanel applies the edits returned by the controls panel.
func (g *Game) applyPanel(res ui.PanelResult) {
	if res.TogglePause {
		g.togglePause()
	}
	if res.Reset {
		res.Params = SimParams(g.cfg)
		res.ParamsChanged = true
	}
	if res.ParamsChanged {
		if err := g.sim.SetParams(res.Params); err != nil {
			slog.Warn("parameter change rejected", "error", err)
		} else {
			g.collector.RecordParamChange()
			slog.Debug("parameters changed", "params", res.Params)
		}
	}
	if res.Resize >= 0 {
		g.sim.Resize(res.Resize)
		g.collector.RecordResize()
	}
}
