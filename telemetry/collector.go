package telemetry

import "github.com/pthm-cable/outpost/evolution"

// Collector accumulates events during a wave and produces WaveStats.
type Collector struct {
	dt float64

	wave      int
	startTick int32

	spawned     int
	killed      int
	reachedGoal int
	despawned   int
	shots       int
	overruns    int
	fitness     []float64
}

// NewCollector creates a new stats collector.
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(dt float64) *Collector {
	return &Collector{dt: dt}
}

// Begin resets the counters for a new wave.
func (c *Collector) Begin(wave int, tick int32) {
	c.wave = wave
	c.startTick = tick
	c.spawned = 0
	c.killed = 0
	c.reachedGoal = 0
	c.despawned = 0
	c.shots = 0
	c.overruns = 0
	c.fitness = c.fitness[:0]
}

// Wave returns the wave being collected.
func (c *Collector) Wave() int { return c.wave }

// RecordSpawn records an alien entering the map.
func (c *Collector) RecordSpawn() { c.spawned++ }

// RecordShot records a turret firing.
func (c *Collector) RecordShot() { c.shots++ }

// RecordOverrun records a turret destroyed by captured territory.
func (c *Collector) RecordOverrun() { c.overruns++ }

// RecordOutcome records a terminal alien outcome and its fitness.
func (c *Collector) RecordOutcome(cause evolution.Cause, fitness float64) {
	switch cause {
	case evolution.CauseKilled:
		c.killed++
	case evolution.CauseReachedGoal:
		c.reachedGoal++
	case evolution.CauseDespawned:
		c.despawned++
	}
	c.fitness = append(c.fitness, fitness)
}

// Outcomes returns the number of terminal outcomes recorded this wave.
func (c *Collector) Outcomes() int { return len(c.fitness) }

// WaveEnd carries the world state sampled when a wave finishes.
type WaveEnd struct {
	Tick       int32
	Generation int
	Lives      int
	Turrets    int
	Territory  float64
	Obstacles  int
	BestEver   float64
	TraitMeans [evolution.NumTraits]float64
}

// Flush produces the WaveStats for the current wave.
func (c *Collector) Flush(end WaveEnd) WaveStats {
	fit := Summarize(c.fitness)
	return WaveStats{
		Wave:        c.wave,
		Generation:  end.Generation,
		StartTick:   c.startTick,
		EndTick:     end.Tick,
		SimTimeSec:  float64(end.Tick) * c.dt,
		DurationSec: float64(end.Tick-c.startTick) * c.dt,

		Spawned:     c.spawned,
		Killed:      c.killed,
		ReachedGoal: c.reachedGoal,
		Despawned:   c.despawned,

		Lives:    end.Lives,
		Turrets:  end.Turrets,
		Shots:    c.shots,
		Overruns: c.overruns,

		FitnessMean: fit.Mean,
		FitnessStd:  fit.Std,
		FitnessP10:  fit.P10,
		FitnessP50:  fit.P50,
		FitnessP90:  fit.P90,
		FitnessMax:  fit.Max,
		BestEver:    end.BestEver,

		Territory: end.Territory,
		Obstacles: end.Obstacles,

		MeanHealth:        end.TraitMeans[evolution.TraitHealth],
		MeanSpeed:         end.TraitMeans[evolution.TraitSpeed],
		MeanArmor:         end.TraitMeans[evolution.TraitArmor],
		MeanSize:          end.TraitMeans[evolution.TraitSize],
		MeanPathVariation: end.TraitMeans[evolution.TraitPathVariation],
		MeanPathAmplitude: end.TraitMeans[evolution.TraitPathAmplitude],
	}
}
