package game

import (
	"log/slog"

	"github.com/pthm-cable/outpost/evolution"
	"github.com/pthm-cable/outpost/systems"
	"github.com/pthm-cable/outpost/telemetry"
)

// StartWave begins the next wave. Returns false if a wave is already
// running or the game is over.
func (g *Game) StartWave() bool {
	if g.over || g.wave.Phase != systems.WaveIdle {
		return false
	}
	number := g.wave.Number + 1
	quota := g.wave.QuotaFor(number)
	g.wave.Start(number, quota)
	g.collector.Begin(number, g.tick)
	g.breakTimer = 0

	slog.Info("wave started",
		"wave", number,
		"quota", quota,
		"generation", g.engine.Generation(),
		"lives", g.lives,
	)
	return true
}

// updateWaveStart counts down the break between waves when auto waves are on.
func (g *Game) updateWaveStart(dt float64) {
	if !g.autoWaves || g.wave.Phase != systems.WaveIdle {
		return
	}
	g.breakTimer -= dt
	if g.breakTimer <= 0 {
		g.StartWave()
	}
}

// finishWave evolves the population that fought the wave and reports it.
func (g *Game) finishWave() {
	g.wave.BeginEvolve()

	fought := g.engine.Population()
	means, _ := evolution.TraitMeans(fought)
	if err := g.outputManager.WritePopulation(telemetry.PopulationRows(g.wave.Number, g.engine.Generation(), fought, g.engine.Ledger())); err != nil {
		slog.Error("failed to write population", "error", err)
	}

	if !g.engine.Evolve() {
		slog.Debug("wave ended with no outcomes", "wave", g.wave.Number)
	}

	stats := g.collector.Flush(telemetry.WaveEnd{
		Tick:       g.tick,
		Generation: g.engine.Generation(),
		Lives:      g.lives,
		Turrets:    g.TurretCount(),
		Territory:  g.territory.Fraction(),
		Obstacles:  len(g.terrain.Obstacles()),
		BestEver:   g.engine.BestFitness(),
		TraitMeans: means,
	})
	g.flushWaveTelemetry(stats)

	g.wave.Finish()
	g.breakTimer = g.cfg.Waves.BreakSeconds

	switch {
	case g.lives <= 0:
		g.over = true
		slog.Info("base destroyed", "wave", stats.Wave, "tick", g.tick)
	case g.cfg.Waves.MaxWaves > 0 && stats.Wave >= g.cfg.Waves.MaxWaves:
		g.over = true
		g.won = true
		slog.Info("defense held", "waves", stats.Wave, "lives", g.lives)
	}
}
