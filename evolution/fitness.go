package evolution

import (
	"fmt"

	"github.com/pthm-cable/outpost/config"
)

// Cause is how a live alien instance ended.
type Cause uint8

const (
	CauseKilled Cause = iota
	CauseReachedGoal
	CauseDespawned // Removed by the wave timeout
)

func (c Cause) String() string {
	switch c {
	case CauseKilled:
		return "killed"
	case CauseReachedGoal:
		return "reached_goal"
	case CauseDespawned:
		return "despawned"
	}
	return "unknown"
}

// ParseCause returns the cause with the given name.
func ParseCause(name string) (Cause, error) {
	for _, c := range []Cause{CauseKilled, CauseReachedGoal, CauseDespawned} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCause, name)
}

// Outcome is the raw result of one alien instance.
type Outcome struct {
	Distance    float64 // Pixels travelled
	TimeAlive   float64 // Seconds alive
	Territory   float64 // Fraction of the map captured, 0..1
	ReachedGoal bool
	Cause       Cause
}

// SecondsAlive converts a tick count to seconds at dt seconds per tick.
func SecondsAlive(ticks int, dt float64) float64 {
	return float64(ticks) * dt
}

// FitnessWeights folds an Outcome into a scalar.
type FitnessWeights struct {
	Distance  float64
	Time      float64
	Territory float64
	GoalBonus float64
}

// WeightsFromConfig copies the configured weights.
func WeightsFromConfig(cfg config.FitnessConfig) FitnessWeights {
	return FitnessWeights{
		Distance:  cfg.DistanceWeight,
		Time:      cfg.TimeWeight,
		Territory: cfg.TerritoryWeight,
		GoalBonus: cfg.GoalBonus,
	}
}

// Score computes fitness for an outcome.
func (w FitnessWeights) Score(o Outcome) float64 {
	f := o.Distance*w.Distance + o.TimeAlive*w.Time + o.Territory*w.Territory
	if o.ReachedGoal {
		f += w.GoalBonus
	}
	return f
}

// FitnessRecord pairs a genome with the fitness one of its instances earned.
type FitnessRecord struct {
	Genome  Genome
	Fitness float64
}
