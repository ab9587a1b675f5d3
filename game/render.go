package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/ui"
)

const controlsLegend = "[Space] Pause  [Tab] Panel  [C] Color  [G] Density  [S] Snapshot  [F11] Fullscreen  [LMB] Push"

var backgroundColor = rl.Color{R: 12, G: 14, B: 20, A: 255}

// Draw renders the frame and the UI, then applies any panel edits.
func (g *Game) Draw() {
	g.perfCollector.RecordRender()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.DrawScene(rl.GetFrameTime())

	params := g.sim.Params()
	res := g.controls.Draw(params, g.sim.Count(), g.paused)

	g.hud.Draw(ui.HUDData{
		Title:     "Fluid",
		Particles: g.sim.Count(),
		Capacity:  g.sim.Capacity(),
		Frame:     g.sim.Frame(),
		FPS:       rl.GetFPS(),
		FrameMS:   g.frameMS,
		ColorMode: g.particles.Mode.String(),
		Paused:    g.paused,
	})
	g.perfPanel.SetPosition(int32(rl.GetScreenWidth())-perfPanelWidth-10, 10)
	g.perfPanel.Draw(g.perfCollector.Stats())
	g.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)

	rl.EndDrawing()

	g.applyPanel(res)
}

// DrawScene renders the simulation without any UI. Callers own the
// surrounding BeginDrawing or BeginTextureMode pair. blendDT paces the
// density field toward its target; 1 or more draws it fully settled.
func (g *Game) DrawScene(blendDT float32) {
	params := g.sim.Params()

	if g.showDensity {
		g.density.Update(g.sim.Grid(), g.sim.Count())
		g.density.Draw(g.camera, blendDT)
	}

	renderer.DrawBoundary(g.camera, g.boundary)
	g.particles.Draw(g.camera, renderer.ParticleView{
		Positions:   g.sim.Positions(),
		Velocities:  g.sim.Velocities(),
		Densities:   g.sim.Densities(),
		RestDensity: params.RestDensity,
		MaxSpeed:    params.MaxSpeed,
	})
	renderer.DrawPointer(g.camera, g.pointer, params.PointerRadius)
}

// SetColorMode selects how particles are coloured.
func (g *Game) SetColorMode(m renderer.ColorMode) {
	g.particles.Mode = m
}

// SetShowDensity toggles the density field underlay.
func (g *Game) SetShowDensity(show bool) {
	g.showDensity = show
}
