package game

import (
	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed   int64
	Config *config.Config // nil uses config.Cfg()

	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int  // Ticks per Update call
	AutoWaves      bool // Start the next wave after the break

	// HallOfFame from an earlier run. When set it replaces the empty hall
	// and seeds part of the first population.
	HallOfFame *telemetry.HallOfFame

	Hub    *telemetry.Hub
	OnWave func(telemetry.WaveStats)
}
