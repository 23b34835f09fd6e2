// Package game runs the tower-defense simulation: terrain, waves, aliens,
// turrets and the per-wave evolution of the alien population.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/evolution"
	"github.com/pthm-cable/outpost/systems"
	"github.com/pthm-cable/outpost/telemetry"
)

// BeamTTL is how long a shot stays visible, in seconds.
const BeamTTL = 0.08

// targetCellSize is the turret lookup bucket size in terrain cells.
const targetCellSize = 4

// Beam is a recent turret shot, kept for drawing.
type Beam struct {
	FromX, FromY float32
	ToX, ToY     float32
	Kind         components.TurretKind
	TTL          float32
}

// ended marks an alien that left play this tick.
type ended struct {
	entity ecs.Entity
	cause  evolution.Cause
}

// Game holds the complete game state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	// Independent streams so terrain, evolution and play can be reseeded apart.
	terrainRng *rand.Rand
	simRng     *rand.Rand

	alienMapper *ecs.Map6[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Lineage,
		components.Route,
		components.Progress,
	]
	alienFilter *ecs.Filter6[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Lineage,
		components.Route,
		components.Progress,
	]
	vitalsMap    *ecs.Map1[components.Vitals]
	turretMapper *ecs.Map2[components.Position, components.Turret]
	turretFilter *ecs.Filter2[components.Position, components.Turret]

	// Terrain and navigation
	rules     *systems.Ruleset
	generator *systems.CollapseGenerator
	terrain   *systems.TerrainGrid
	planner   *systems.AStarPlanner
	placer    *systems.SpawnPlacer
	territory *systems.TerritoryMap
	mapIndex  int

	// Defense
	turrets      systems.TurretTable
	baseX, baseY float32
	lives        int
	beams        []Beam

	// Evolution
	engine  *evolution.Engine
	weights evolution.FitnessWeights
	wave    *systems.WaveState

	// Per-tick scratch
	ending     []ended
	endingSet  map[ecs.Entity]struct{}
	candidates []systems.TargetCandidate
	targets    []ecs.Entity
	targetGrid *systems.TargetGrid

	// State
	tick           int32
	live           int
	paused         bool
	autoWaves      bool
	breakTimer     float64
	over           bool
	won            bool
	stepsPerUpdate int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	hallOfFame       *telemetry.HallOfFame
	bookmarkDetector *telemetry.BookmarkDetector
	hub              *telemetry.Hub
	logStats         bool
	onWave           func(telemetry.WaveStats)
	lastWave         telemetry.WaveStats
}

// NewGameWithOptions creates a game, generates the first map and places the defense.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	rules, err := systems.NewRuleset(cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("building terrain rules: %w", err)
	}

	evoRng := rand.New(rand.NewSource(opts.Seed))
	engine, err := evolution.NewEngine(cfg.Evolution, cfg.Traits, evoRng)
	if err != nil {
		return nil, fmt.Errorf("creating evolution engine: %w", err)
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:        cfg,
		world:      world,
		terrainRng: rand.New(rand.NewSource(opts.Seed + 1)),
		simRng:     rand.New(rand.NewSource(opts.Seed + 2)),
		alienMapper: ecs.NewMap6[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Lineage,
			components.Route,
			components.Progress,
		](world),
		alienFilter: ecs.NewFilter6[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Lineage,
			components.Route,
			components.Progress,
		](world),
		vitalsMap:    ecs.NewMap1[components.Vitals](world),
		turretMapper: ecs.NewMap2[components.Position, components.Turret](world),
		turretFilter: ecs.NewFilter2[components.Position, components.Turret](world),

		rules:   rules,
		turrets: systems.NewTurretTable(cfg.Defense),
		lives:   cfg.Defense.Lives,

		engine:  engine,
		weights: evolution.WeightsFromConfig(cfg.Fitness),
		wave:    systems.NewWaveState(cfg.Waves),

		endingSet:  make(map[ecs.Entity]struct{}),
		targetGrid: systems.NewTargetGrid(cfg.Derived.ScreenW, cfg.Derived.ScreenH, targetCellSize*cfg.Derived.CellSize),

		autoWaves:      opts.AutoWaves,
		stepsPerUpdate: max(1, opts.StepsPerUpdate),

		collector:        telemetry.NewCollector(cfg.Physics.DT),
		perfCollector:    telemetry.NewPerfCollector(60),
		hallOfFame:       telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize, rand.New(rand.NewSource(opts.Seed+3))),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		hub:              opts.Hub,
		logStats:         opts.LogStats,
		onWave:           opts.OnWave,
	}
	if opts.HallOfFame != nil {
		g.hallOfFame = opts.HallOfFame
		g.seedFromHallOfFame()
	}
	g.generator = systems.NewCollapseGenerator(rules, cfg.Terrain.BudgetFactor, cfg.Derived.CellSize, g.terrainRng)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if err := g.Regenerate(); err != nil {
		om.Close()
		return nil, err
	}

	slog.Info("game created",
		"seed", opts.Seed,
		"cols", g.terrain.Cols(),
		"rows", g.terrain.Rows(),
		"population", cfg.Evolution.PopulationSize,
		"policy", engine.Policy().String(),
		"turrets", g.TurretCount(),
		"headless", opts.Headless,
	)

	return g, nil
}

// Unload flushes telemetry and closes output files.
func (g *Game) Unload() {
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// Terrain returns the current map.
func (g *Game) Terrain() *systems.TerrainGrid { return g.terrain }

// Territory returns the alien-captured cells.
func (g *Game) Territory() *systems.TerritoryMap { return g.territory }

// Base returns the defended base position.
func (g *Game) Base() (x, y float32) { return g.baseX, g.baseY }

// Lives returns the base's remaining lives.
func (g *Game) Lives() int { return g.lives }

// Wave returns the wave state machine.
func (g *Game) Wave() *systems.WaveState { return g.wave }

// Engine returns the evolution engine.
func (g *Game) Engine() *evolution.Engine { return g.engine }

// HallOfFame returns the fittest genomes seen so far.
func (g *Game) HallOfFame() *telemetry.HallOfFame { return g.hallOfFame }

// LastWave returns the stats of the most recently finished wave.
func (g *Game) LastWave() telemetry.WaveStats { return g.lastWave }

// Perf returns rolling tick timings.
func (g *Game) Perf() telemetry.PerfStats { return g.perfCollector.Stats() }

// LiveAliens returns the number of aliens in play.
func (g *Game) LiveAliens() int { return g.live }

// Over reports whether the game has ended, by defeat or victory.
func (g *Game) Over() bool { return g.over }

// Won reports whether the defense survived every wave.
func (g *Game) Won() bool { return g.won }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() { g.paused = !g.paused }

// AutoWaves reports whether waves start on their own.
func (g *Game) AutoWaves() bool { return g.autoWaves }

// SetAutoWaves turns automatic wave starts on or off.
func (g *Game) SetAutoWaves(on bool) { g.autoWaves = on }

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the simulation speed multiplier, clamped to 1..10.
func (g *Game) SetStepsPerUpdate(n int) { g.stepsPerUpdate = max(1, min(10, n)) }

// Beams returns the shots fired in the last few ticks.
func (g *Game) Beams() []Beam { return g.beams }

// TurretCount returns the number of standing turrets.
func (g *Game) TurretCount() int {
	n := 0
	query := g.turretFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// AlienView is the drawable state of one live alien.
type AlienView struct {
	X, Y       float32
	Heading    float32
	Radius     float32
	HealthFrac float32
	Route      []components.Position
}

// Aliens returns the drawable state of every live alien.
func (g *Game) Aliens() []AlienView {
	out := make([]AlienView, 0, g.live)
	query := g.alienFilter.Query()
	for query.Next() {
		pos, mot, vit, _, route, _ := query.Get()
		frac := float32(0)
		if vit.MaxHealth > 0 {
			frac = max(0, vit.Health/vit.MaxHealth)
		}
		out = append(out, AlienView{
			X:          pos.X,
			Y:          pos.Y,
			Heading:    mot.Heading,
			Radius:     vit.Radius,
			HealthFrac: frac,
			Route:      route.Waypoints[route.Index:],
		})
	}
	return out
}

// TurretView is the drawable state of one turret.
type TurretView struct {
	X, Y  float32
	Kind  components.TurretKind
	Range float32
	Ready bool
	Kills int
}

// Turrets returns the drawable state of every turret.
func (g *Game) Turrets() []TurretView {
	var out []TurretView
	query := g.turretFilter.Query()
	for query.Next() {
		pos, t := query.Get()
		out = append(out, TurretView{
			X:     pos.X,
			Y:     pos.Y,
			Kind:  t.Kind,
			Range: g.turrets[t.Kind].Range,
			Ready: t.Cooldown <= 0,
			Kills: t.Kills,
		})
	}
	return out
}
