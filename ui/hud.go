package ui

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Wave        int
	Phase       string
	Spawned     int
	Quota       int
	Lives       int
	MaxLives    int
	Generation  int
	BestFitness float64
	LiveAliens  int
	Turrets     int
	Territory   float64
	Tick        int32
	Speed       int
	FPS         int32
	Paused      bool
	AutoWaves   bool
	Over        bool
	Won         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(fmt.Sprintf("Wave %d  [%s]  %d/%d spawned", data.Wave, data.Phase, data.Spawned, data.Quota), 10, 10, 20, rl.White)

	h.renderer.DrawLevelBar(10, 35, "Lives", float32(data.Lives), float32(data.MaxLives), 260)

	rl.DrawText(
		fmt.Sprintf("Generation: %d | Best fitness: %.1f | Aliens: %d | Turrets: %d | Territory: %.1f%%",
			data.Generation, data.BestFitness, data.LiveAliens, data.Turrets, data.Territory*100),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 75, 16, rl.LightGray,
	)

	var status string
	color := rl.Yellow
	switch {
	case data.Over && data.Won:
		status, color = "VICTORY: the base held", rl.Green
	case data.Over:
		status, color = "BASE FALLEN", rl.Red
	case data.Paused:
		status = "PAUSED"
	case data.AutoWaves:
		status = "Auto waves"
	default:
		status = "Running"
	}
	rl.DrawText(status, 10, 95, 16, color)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// Draw renders the performance panel, slowest phase first.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	phases := make([]telemetry.Phase, 0, telemetry.NumPhases)
	for ph := range telemetry.NumPhases {
		phases = append(phases, ph)
	}
	slices.SortStableFunc(phases, func(a, b telemetry.Phase) int {
		return cmp.Compare(stats.PhaseAvg[b], stats.PhaseAvg[a])
	})

	width := int32(260)
	height := int32(60 + 14*len(phases))
	p.renderer.DrawPanel(p.x, p.y, width, height)

	x := p.x + p.renderer.Theme.Padding
	y := p.y + p.renderer.Theme.Padding
	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  TPS: %.0f", stats.AvgTick.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 18

	for _, ph := range phases {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", ph, stats.PhaseAvg[ph].Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}

// PopulationPanel shows the last wave's fitness and trait means.
type PopulationPanel struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewPopulationPanel builds the panel's fields from the trait bounds.
func NewPopulationPanel(x, y, width int32, traits config.TraitsConfig) *PopulationPanel {
	stat := func(f func(telemetry.WaveStats) float64) func(any) float32 {
		return func(data any) float32 { return float32(f(data.(telemetry.WaveStats))) }
	}
	bar := func(id, label string, tr config.TraitRange, f func(telemetry.WaveStats) float64) FieldDescriptor {
		return FieldDescriptor{
			ID:     id,
			Label:  label,
			Widget: WidgetBar,
			Range:  FieldRange{Min: float32(tr.Min), Max: float32(tr.Max)},
			Getter: stat(f),
		}
	}
	text := func(id, label, format string, f func(telemetry.WaveStats) float64) FieldDescriptor {
		return FieldDescriptor{ID: id, Label: label, Widget: WidgetText, Format: format, Getter: stat(f)}
	}

	return &PopulationPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: []SectionDescriptor{
			{
				ID:    "outcomes",
				Title: "Last Wave",
				Fields: []FieldDescriptor{
					{ID: "summary", Label: "Outcomes", Widget: WidgetText, TextGetter: func(data any) string {
						s := data.(telemetry.WaveStats)
						return fmt.Sprintf("%d killed, %d breached, %d timed out", s.Killed, s.ReachedGoal, s.Despawned)
					}},
					text("fitness_mean", "Fitness", "%.1f", func(s telemetry.WaveStats) float64 { return s.FitnessMean }),
					text("fitness_p90", "Fitness p90", "%.1f", func(s telemetry.WaveStats) float64 { return s.FitnessP90 }),
					text("fitness_max", "Fitness max", "%.1f", func(s telemetry.WaveStats) float64 { return s.FitnessMax }),
				},
			},
			{
				ID:    "traits",
				Title: "Trait Means",
				Fields: []FieldDescriptor{
					bar("health", "Health", traits.Health, func(s telemetry.WaveStats) float64 { return s.MeanHealth }),
					bar("speed", "Speed", traits.Speed, func(s telemetry.WaveStats) float64 { return s.MeanSpeed }),
					bar("armor", "Armor", traits.Armor, func(s telemetry.WaveStats) float64 { return s.MeanArmor }),
					bar("size", "Size", traits.Size, func(s telemetry.WaveStats) float64 { return s.MeanSize }),
					bar("path_variation", "Path var", traits.PathVariation, func(s telemetry.WaveStats) float64 { return s.MeanPathVariation }),
					bar("path_amplitude", "Path amp", traits.PathAmplitude, func(s telemetry.WaveStats) float64 { return s.MeanPathAmplitude }),
				},
			},
		},
	}
}

// SetPosition updates the panel position.
func (p *PopulationPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel. Nothing is drawn before the first wave ends.
func (p *PopulationPanel) Draw(stats telemetry.WaveStats) {
	if stats.Wave == 0 {
		return
	}
	r := p.renderer
	height := r.Theme.Padding * 2
	for _, sd := range p.sections {
		height += r.SectionHeight(sd)
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	y := p.y + r.Theme.Padding
	for _, sd := range p.sections {
		y = r.DrawSection(p.x+r.Theme.Padding, y, sd, stats, p.width-r.Theme.Padding*2)
	}
}
