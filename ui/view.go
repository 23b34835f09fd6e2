package ui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outpost/camera"
	"github.com/pthm-cable/outpost/game"
	"github.com/pthm-cable/outpost/renderer"
	"github.com/pthm-cable/outpost/systems"
)

const (
	controlsWidth = 220
	controlsHint  = "[N] wave  [A] auto  [Enter] regenerate  [Space] pause  [<][>] speed  [G/R/T/B] map  [F/P] panels  [Wheel/RMB/arrows] camera  [Home] reset view  [F11] fullscreen"

	panSpeed = 600 // Screen pixels per second
	zoomStep = 1.1
)

// View draws a game and turns player input into game commands.
type View struct {
	game     *game.Game
	camera   *camera.Camera
	terrain  *renderer.TerrainRenderer
	overlays *OverlayRegistry
	hud      *HUD
	controls *ControlsPanel
	perf     *PerfPanel
	pop      *PopulationPanel

	screenW, screenH int32
}

// NewView creates a view for g. The raylib window must already be open.
func NewView(g *game.Game) *View {
	cfg := g.Config()
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	v := &View{
		game:     g,
		camera:   camera.New(float32(w), float32(h), g.Terrain().Width(), g.Terrain().Height()),
		terrain:  renderer.NewTerrainRenderer(),
		overlays: NewOverlayRegistry(),
		hud:      NewHUD(),
		controls: NewControlsPanel(w-controlsWidth-10, 10, controlsWidth),
		perf:     NewPerfPanel(10, 125),
		pop:      NewPopulationPanel(w-controlsWidth-10, 330, controlsWidth, cfg.Traits),
		screenW:  w,
		screenH:  h,
	}
	return v
}

// HandleInput processes keyboard input.
func (v *View) HandleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyN) {
		v.game.StartWave()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		v.game.SetAutoWaves(!v.game.AutoWaves())
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		v.regenerate()
	}

	v.overlays.HandleKeys()
	v.handleCamera()
}

// handleCamera pans with the right mouse button or arrow keys and zooms
// toward the cursor with the wheel.
func (v *View) handleCamera() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		factor := float32(zoomStep)
		if wheel < 0 {
			factor = 1 / factor
		}
		v.camera.ZoomAt(m.X, m.Y, factor)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.camera.Pan(-d.X, -d.Y)
	}

	step := panSpeed * rl.GetFrameTime()
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, step)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// camera2D mirrors the camera into raylib's world transform.
func (v *View) camera2D() rl.Camera2D {
	c := v.camera
	return rl.Camera2D{
		Offset: rl.NewVector2(c.ViewportW/2, c.ViewportH/2),
		Target: rl.NewVector2(c.X, c.Y),
		Zoom:   c.Zoom,
	}
}

// handleResize re-anchors the right-side panels.
func (v *View) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.camera.Resize(float32(w), float32(h))
	v.controls.SetPosition(w-controlsWidth-10, 10)
	v.pop.SetPosition(w-controlsWidth-10, 330)
}

func (v *View) regenerate() {
	if err := v.game.Regenerate(); err != nil {
		slog.Warn("regenerate refused", "error", err)
	}
}

// Draw renders one frame and applies any panel clicks.
func (v *View) Draw() {
	g := v.game
	cfg := g.Config()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.BeginMode2D(v.camera2D())
	v.terrain.Draw(g.Terrain())
	if v.overlays.IsEnabled(OverlayTerritory) {
		renderer.DrawTerritory(g.Terrain(), g.Territory())
	}
	baseX, baseY := g.Base()
	renderer.DrawBase(baseX, baseY, float32(cfg.Alien.GoalRadius), g.Lives())
	renderer.DrawTurrets(g.Turrets(), v.overlays.IsEnabled(OverlayTurretRange))
	if v.overlays.IsEnabled(OverlayBeams) {
		renderer.DrawBeams(g.Beams(), game.BeamTTL)
	}
	renderer.DrawAliens(g.Aliens(), v.overlays.IsEnabled(OverlayRoutes))
	rl.EndMode2D()

	wave := g.Wave()
	v.hud.Draw(HUDData{
		Wave:        wave.Number,
		Phase:       wave.Phase.String(),
		Spawned:     wave.Spawned,
		Quota:       wave.Quota,
		Lives:       g.Lives(),
		MaxLives:    cfg.Defense.Lives,
		Generation:  g.Engine().Generation(),
		BestFitness: g.Engine().BestFitness(),
		LiveAliens:  g.LiveAliens(),
		Turrets:     g.TurretCount(),
		Territory:   g.Territory().Fraction(),
		Tick:        g.Tick(),
		Speed:       g.StepsPerUpdate(),
		FPS:         rl.GetFPS(),
		Paused:      g.Paused(),
		AutoWaves:   g.AutoWaves(),
		Over:        g.Over(),
		Won:         g.Won(),
	})
	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(g.Perf())
	}
	if v.overlays.IsEnabled(OverlayPopulation) {
		v.pop.Draw(g.LastWave())
	}

	idle := wave.Phase == systems.WaveIdle && !g.Over()
	action := v.controls.Draw(ControlsState{
		CanStartWave: idle,
		CanRegen:     idle && g.LiveAliens() == 0,
		Paused:       g.Paused(),
		AutoWaves:    g.AutoWaves(),
		Speed:        g.StepsPerUpdate(),
	}, v.overlays)
	v.hud.DrawControls(v.screenH, controlsHint)

	rl.EndDrawing()

	v.apply(action)
}

func (v *View) apply(action ControlsAction) {
	g := v.game
	if action.StartWave {
		g.StartWave()
	}
	if action.ToggleAuto {
		g.SetAutoWaves(!g.AutoWaves())
	}
	if action.Regenerate {
		v.regenerate()
	}
	if action.TogglePause {
		g.TogglePause()
	}
	if action.Speed > 0 {
		g.SetStepsPerUpdate(action.Speed)
	}
}

// Unload frees GPU resources.
func (v *View) Unload() {
	v.terrain.Unload()
}
