package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

// PanelResult reports the edits made in the controls panel this frame.
type PanelResult struct {
	Params        fluid.Params
	ParamsChanged bool

	// Resize is the requested particle count, or -1 when unchanged.
	Resize int

	TogglePause bool
	Reset       bool
}

// ControlsPanel renders the parameter sliders.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	sliders  []SliderSpec

	maxCount     int
	countSlider  float32
	pendingCount int
	countDirty   bool
}

const (
	sliderHeight = 16
	sliderStride = 36
	buttonHeight = 24
)

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32, maxCount int) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		sliders:  ParamSliders(),
		maxCount: maxCount,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

func (c *ControlsPanel) height() int32 {
	p := c.renderer.Theme.Padding
	// Title, one row per parameter, the count slider, then the buttons.
	return p + c.renderer.Theme.LineHeight + 4 + int32(len(c.sliders)+1)*sliderStride + buttonHeight + p
}

// Bounds returns the panel rectangle.
func (c *ControlsPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height())}
}

// Contains reports whether a screen position is over the visible panel.
// The pointer force is suppressed there.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return c.visible && rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, c.Bounds())
}

// Draw renders the panel and returns the edits made this frame.
func (c *ControlsPanel) Draw(params fluid.Params, count int, paused bool) PanelResult {
	res := PanelResult{Params: params, Resize: -1}
	if !c.visible {
		return res
	}

	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + pad)
	y := c.y + pad
	sliderW := float32(c.width-pad*2) - 60

	rl.DrawText("Fluid Parameters", c.x+pad, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, s := range c.sliders {
		cur := s.Get(&res.Params)
		rl.DrawText(s.Label, c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf(s.Format, cur), int32(x+sliderW)+6, y+16, r.Theme.FontSize, r.Theme.ValueColor)

		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y + 14), Width: sliderW, Height: sliderHeight},
			"", "",
			float32(cur), float32(s.Min), float32(s.Max),
		)
		if v := s.Clamp(float64(next)); float32(v) != float32(cur) {
			s.Set(&res.Params, v)
			res.ParamsChanged = true
		}
		y += sliderStride
	}

	// Particle count: logarithmic, applied once the slider is released.
	if !c.countDirty {
		c.countSlider = float32(CountToSlider(count, c.maxCount))
		c.pendingCount = count
	}
	rl.DrawText("Particle Count", c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(fmt.Sprintf("%d", c.pendingCount), int32(x+sliderW)+6, y+16, r.Theme.FontSize, r.Theme.ValueColor)
	t := gui.SliderBar(
		rl.Rectangle{X: x, Y: float32(y + 14), Width: sliderW, Height: sliderHeight},
		"", "",
		c.countSlider, 0, 1,
	)
	if t != c.countSlider {
		c.countSlider = t
		c.pendingCount = SliderToCount(float64(t), c.maxCount)
		c.countDirty = true
	}
	if c.countDirty && !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		c.countDirty = false
		if c.pendingCount != count {
			res.Resize = c.pendingCount
		}
	}
	y += sliderStride

	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	half := float32(c.width-pad*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: buttonHeight}, pauseText) {
		res.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(pad), Y: float32(y), Width: half, Height: buttonHeight}, "Reset Params") {
		res.Reset = true
	}

	return res
}
