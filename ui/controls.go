package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel displays.
type ControlsState struct {
	CanStartWave bool
	CanRegen     bool
	Paused       bool
	AutoWaves    bool
	Speed        int
}

// ControlsAction is what the player clicked this frame.
type ControlsAction struct {
	StartWave   bool
	Regenerate  bool
	TogglePause bool
	ToggleAuto  bool
	Speed       int // 0 = unchanged
}

// ControlsPanel renders the right-side panel of buttons and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and returns the player's clicks.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsAction {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	items := 0
	categories := overlays.Categories()
	for _, cat := range categories {
		items += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := 5*28 + 40 + int32(items)*lineHeight + padding*3
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)
	var action ControlsAction

	button := func(label string, enabled bool) bool {
		if !enabled {
			gui.Disable()
			defer gui.Enable()
		}
		clicked := gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 24}, label)
		y += 28
		return clicked && enabled
	}

	action.StartWave = button("Start Wave", state.CanStartWave)
	action.ToggleAuto = button(fmt.Sprintf("Auto Waves: %s", onOff(state.AutoWaves)), true)
	action.Regenerate = button("Regenerate Terrain", state.CanRegen)
	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	action.TogglePause = button(pauseLabel, true)

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	speed := gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: w - 40, Height: 16}, "1", "10", float32(state.Speed), 1, 10)
	if s := int(speed + 0.5); s != state.Speed {
		action.Speed = s
	}
	y += 36

	iy := int32(y)
	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, iy, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		iy += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, iy, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			iy += lineHeight
		}
	}

	return action
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "map":
		return "Map"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
