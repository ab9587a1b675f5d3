package ui

import (
	"fmt"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Particles int
	Capacity  int
	Frame     int64
	FPS       int32
	FrameMS   float64
	ColorMode string
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d / %d | Frame: %d", data.Particles, data.Capacity, data.Frame),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("FPS: %d | %.2f ms | Color: %s", data.FPS, data.FrameMS, data.ColorMode),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 400, 10, 20, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-pass timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	phases := append(slices.Clone(fluid.Phases), telemetry.PhaseHost)
	height := pad*2 + r.Theme.LineHeight*int32(len(phases)+2) + 4

	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Step Performance")

	y = r.DrawLabelValue(x, y, "Step", fmt.Sprintf("%s (%.0f/s)",
		stats.AvgStepDuration.Round(time.Microsecond), stats.StepsPerSecond))
	for _, phase := range phases {
		y = r.DrawBar(x, y, phase, stats.PhasePct[phase], 40, p.width-pad*2)
	}
}
