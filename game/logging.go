package game

import "log/slog"

// logPerf logs rolling tick timings.
func (g *Game) logPerf() {
	g.perfCollector.Stats().LogStats()
}

// logWorldState logs a one-line summary of the running game.
func (g *Game) logWorldState() {
	slog.Info("world",
		"tick", g.tick,
		"wave", g.wave.Number,
		"phase", g.wave.Phase.String(),
		"live", g.live,
		"lives", g.lives,
		"turrets", g.TurretCount(),
		"territory", g.territory.Fraction(),
		"generation", g.engine.Generation(),
		"best_fitness", g.engine.BestFitness(),
	)
}
