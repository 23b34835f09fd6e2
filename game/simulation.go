package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/outpost/evolution"
	"github.com/pthm-cable/outpost/systems"
	"github.com/pthm-cable/outpost/telemetry"
)

// Update runs StepsPerUpdate ticks unless paused. Used by the graphical loop.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs StepsPerUpdate ticks, ignoring pause.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Step runs exactly one tick.
func (g *Game) Step() {
	g.simulationStep()
}

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	if g.over {
		return
	}
	dt := g.cfg.Derived.DT32
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSpawn)
	g.updateWaveStart(float64(dt))
	for n := g.wave.Advance(float64(dt)); n > 0; n-- {
		g.spawnAlien()
	}

	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	g.moveAliens(dt)

	g.perfCollector.StartPhase(telemetry.PhaseDefense)
	g.fireTurrets(dt)
	g.overrunTurrets()
	g.updateBeams(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTerritory)
	g.territory.Decay(float64(dt), g.cfg.Territory.DecayInterval, g.cfg.Territory.DecayChance, g.simRng)

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	if g.wave.TimedOut() {
		g.despawnAll()
		g.wave.Expire()
	}
	g.cleanupEnded()
	if g.lives <= 0 && g.wave.Active() {
		// The base fell: end the wave so its outcomes are still recorded.
		g.despawnAll()
		g.wave.Expire()
		g.cleanupEnded()
	}

	g.perfCollector.StartPhase(telemetry.PhaseWaveEnd)
	if g.wave.ReadyToEvolve(g.live) {
		g.finishWave()
	}
	g.perfCollector.EndTick()
	g.tick++
	if g.logStats && g.tick%600 == 0 {
		g.logPerf()
		g.logWorldState()
	}
}

// moveAliens advances every alien along its route, claims territory and
// marks those that reach the base.
func (g *Game) moveAliens(dt float32) {
	cfg := g.cfg
	arrival := float32(cfg.Alien.WaypointRadius)
	goal := float32(cfg.Alien.GoalRadius)

	query := g.alienFilter.Query()
	for query.Next() {
		pos, mot, _, _, route, prog := query.Get()

		prog.Distance += systems.StepAlien(pos, mot, route, arrival, dt)
		prog.Ticks++

		col, row := g.terrain.CellAt(pos.X, pos.Y)
		if g.territory.TryCapture(col, row, cfg.Territory.CaptureChance, g.simRng) {
			prog.Captured++
		}

		if systems.WithinRadius(pos.X, pos.Y, g.baseX, g.baseY, goal) {
			prog.ReachedGoal = true
			g.markEnded(query.Entity(), evolution.CauseReachedGoal)
		}
	}
}

// fireTurrets lets each ready turret shoot the nearest visible alien in range.
func (g *Game) fireTurrets(dt float32) {
	// Snapshot targets first; vitals are written through vitalsMap below.
	g.candidates = g.candidates[:0]
	g.targets = g.targets[:0]
	aliens := g.alienFilter.Query()
	for aliens.Next() {
		e := aliens.Entity()
		if _, done := g.endingSet[e]; done {
			continue
		}
		pos, _, _, _, _, _ := aliens.Get()
		g.candidates = append(g.candidates, systems.TargetCandidate{X: pos.X, Y: pos.Y, Index: len(g.targets)})
		g.targets = append(g.targets, e)
	}
	g.targetGrid.Rebuild(g.candidates)

	query := g.turretFilter.Query()
	for query.Next() {
		pos, turret := query.Get()
		if !systems.TickCooldown(turret, dt) || len(g.candidates) == 0 {
			continue
		}
		spec := g.turrets[turret.Kind]
		i := g.targetGrid.Nearest(g.terrain, pos.X, pos.Y, spec.Range)
		if i < 0 {
			continue
		}

		target := g.candidates[i]
		entity := g.targets[target.Index]
		turret.Cooldown = spec.Interval
		turret.Shots++
		g.collector.RecordShot()
		g.beams = append(g.beams, Beam{FromX: pos.X, FromY: pos.Y, ToX: target.X, ToY: target.Y, Kind: turret.Kind, TTL: BeamTTL})

		if systems.ApplyDamage(g.vitalsMap.Get(entity), spec.Damage) {
			turret.Kills++
			g.markEnded(entity, evolution.CauseKilled)
			// Dead aliens are no longer targets this tick.
			g.candidates[i].Down = true
		}
	}
}

// overrunTurrets destroys turrets standing in captured territory.
func (g *Game) overrunTurrets() {
	fraction := g.cfg.Defense.OverrunFraction
	if fraction <= 0 {
		return
	}

	var lost []ecs.Entity
	query := g.turretFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		col, row := g.terrain.CellAt(pos.X, pos.Y)
		if systems.Overrun(g.territory, col, row, fraction) {
			lost = append(lost, query.Entity())
		}
	}
	for _, e := range lost {
		g.turretMapper.Remove(e)
		g.collector.RecordOverrun()
	}
}

// updateBeams ages recent shots and drops expired ones.
func (g *Game) updateBeams(dt float32) {
	kept := g.beams[:0]
	for _, b := range g.beams {
		b.TTL -= dt
		if b.TTL > 0 {
			kept = append(kept, b)
		}
	}
	g.beams = kept
}
