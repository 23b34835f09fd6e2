package game

import (
	"log/slog"

	"github.com/pthm-cable/outpost/telemetry"
)

// flushWaveTelemetry logs, writes, publishes and bookmarks a finished wave.
func (g *Game) flushWaveTelemetry(stats telemetry.WaveStats) {
	g.lastWave = stats
	perfStats := g.perfCollector.Stats()

	if g.onWave != nil {
		g.onWave(stats)
	}

	if g.logStats {
		stats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteWave(stats); err != nil {
			slog.Error("failed to write wave stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.EndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if !g.hub.Publish("wave", stats) && g.hub.Clients() > 0 {
		slog.Warn("wave stats dropped by hub", "wave", stats.Wave)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
