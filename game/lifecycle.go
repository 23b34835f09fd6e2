package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/evolution"
	"github.com/pthm-cable/outpost/systems"
	"github.com/pthm-cable/outpost/telemetry"
)

// ErrWaveInProgress is returned when the map is regenerated mid-wave.
var ErrWaveInProgress = errors.New("wave in progress")

// Regenerate builds a new map, clears territory and re-places the defense.
// Only allowed between waves.
func (g *Game) Regenerate() error {
	if g.wave.Active() || g.live > 0 {
		return ErrWaveInProgress
	}

	cfg := g.cfg
	grid, err := g.generator.GenerateForCanvas(cfg.Derived.ScreenW, cfg.Derived.ScreenH)
	if err != nil {
		return fmt.Errorf("generating terrain: %w", err)
	}

	g.terrain = grid
	g.planner = systems.NewAStarPlanner(grid)
	g.placer = systems.NewSpawnPlacer(grid, cfg.Alien, g.simRng)
	g.territory = systems.NewTerritoryMap(grid.Cols(), grid.Rows())
	g.mapIndex++

	// The base sits on the passable cell nearest the map centre.
	baseCol, baseRow := grid.CellAt(cfg.Derived.BaseX, cfg.Derived.BaseY)
	if !grid.IsPassable(baseCol, baseRow) {
		baseCol, baseRow = grid.NearestPassable(baseCol, baseRow)
	}
	if baseCol < 0 {
		g.baseX, g.baseY = cfg.Derived.BaseX, cfg.Derived.BaseY
	} else {
		g.baseX, g.baseY = grid.CellCenter(baseCol, baseRow)
	}

	g.placeDefense()

	stats := grid.Stats()
	slog.Info("terrain generated",
		"map", g.mapIndex,
		"cols", grid.Cols(),
		"rows", grid.Rows(),
		"obstacles", len(grid.Obstacles()),
		"iterations", stats.Iterations,
		"contradictions", stats.Contradictions,
		"finalized", stats.Finalized,
	)

	if err := g.outputManager.WriteTerrain(telemetry.TerrainRows(g.mapIndex, grid)); err != nil {
		slog.Error("failed to write terrain", "error", err)
	}
	return nil
}

// seedFromHallOfFame replaces up to half the opening population with
// tournament picks from the hall.
func (g *Game) seedFromHallOfFame() {
	n := min(g.hallOfFame.Size(), g.cfg.Evolution.PopulationSize/2)
	if n == 0 {
		return
	}
	seeds := make([]evolution.Genome, 0, n)
	for range n {
		genome, ok := g.hallOfFame.Sample()
		if !ok {
			break
		}
		seeds = append(seeds, genome)
	}
	placed := g.engine.Seed(seeds)
	slog.Info("population seeded from hall of fame", "seeded", placed, "hall_size", g.hallOfFame.Size())
}

// placeDefense removes any standing turrets and scatters a fresh set around the base.
func (g *Game) placeDefense() {
	var old []ecs.Entity
	query := g.turretFilter.Query()
	for query.Next() {
		old = append(old, query.Entity())
	}
	for _, e := range old {
		g.turretMapper.Remove(e)
	}

	placements := systems.PlaceTurrets(g.terrain, g.turrets, g.baseX, g.baseY, float32(g.cfg.Defense.PlacementRing), g.simRng)
	for _, p := range placements {
		pos := p.Pos
		turret := components.Turret{Kind: p.Kind}
		g.turretMapper.NewEntity(&pos, &turret)
	}
}

// spawnAlien draws a genome and puts one instance of it on its spawn edge.
func (g *Game) spawnAlien() ecs.Entity {
	cfg := g.cfg
	genome := g.engine.DrawGenomeForSpawn()
	p := genome.Decode()

	x, y, ok := g.placer.Place(p.SpawnSide)
	if !ok {
		slog.Debug("no clear spawn point, using centre fallback", "side", p.SpawnSide.String(), "genome", genome.ID)
	}

	pos := components.Position{X: x, Y: y}
	mot := components.Motion{Speed: float32(p.Speed * cfg.Alien.SpeedScale)}
	vit := components.Vitals{
		Health:    float32(p.Health),
		MaxHealth: float32(p.Health),
		Armor:     float32(p.Armor),
		Radius:    float32(p.Size) / 2,
	}
	lin := components.Lineage{Genome: genome, Wave: g.wave.Number}
	route := components.Route{Waypoints: g.planner.PlanRoute(x, y, g.baseX, g.baseY, p, cfg.Alien.PathSegments)}
	prog := components.Progress{}

	entity := g.alienMapper.NewEntity(&pos, &mot, &vit, &lin, &route, &prog)
	g.live++
	g.collector.RecordSpawn()
	return entity
}

// markEnded schedules an alien for removal. Later marks for the same alien
// in the same tick are ignored, so each instance has exactly one cause.
func (g *Game) markEnded(e ecs.Entity, cause evolution.Cause) {
	if _, dup := g.endingSet[e]; dup {
		return
	}
	g.endingSet[e] = struct{}{}
	g.ending = append(g.ending, ended{entity: e, cause: cause})
}

// despawnAll marks every live alien as despawned.
func (g *Game) despawnAll() {
	var live []ecs.Entity
	query := g.alienFilter.Query()
	for query.Next() {
		live = append(live, query.Entity())
	}
	for _, e := range live {
		g.markEnded(e, evolution.CauseDespawned)
	}
}

// cleanupEnded records the outcome of every alien marked this tick and
// removes it from the world.
func (g *Game) cleanupEnded() {
	cells := float64(g.territory.Cells())
	for _, end := range g.ending {
		if !g.world.Alive(end.entity) {
			continue
		}
		_, _, _, lin, _, prog := g.alienMapper.Get(end.entity)

		outcome := evolution.Outcome{
			Distance:    float64(prog.Distance),
			TimeAlive:   evolution.SecondsAlive(prog.Ticks, g.cfg.Physics.DT),
			ReachedGoal: end.cause == evolution.CauseReachedGoal,
			Cause:       end.cause,
		}
		if cells > 0 {
			outcome.Territory = float64(prog.Captured) / cells
		}
		fitness := g.weights.Score(outcome)

		g.engine.RecordOutcome(lin.Genome, fitness)
		g.collector.RecordOutcome(end.cause, fitness)
		g.hallOfFame.Consider(telemetry.HallEntry{
			Genome:     lin.Genome,
			Fitness:    fitness,
			Wave:       lin.Wave,
			Generation: g.engine.Generation(),
			Cause:      end.cause,
		})
		if end.cause == evolution.CauseReachedGoal {
			g.lives = max(0, g.lives-1)
		}

		g.alienMapper.Remove(end.entity)
		g.live--
	}

	g.ending = g.ending[:0]
	clear(g.endingSet)
}
