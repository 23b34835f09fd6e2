// Package evolution implements the per-wave genetic algorithm over alien genomes.
package evolution

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/outpost/config"
)

// Trait indexes a heritable genome trait.
type Trait uint8

const (
	TraitHealth Trait = iota
	TraitSpeed
	TraitArmor
	TraitSize
	TraitPathVariation
	TraitPathAmplitude
	TraitSpawnSide
	NumTraits
)

var traitNames = [NumTraits]string{
	"health",
	"speed",
	"armor",
	"size",
	"path_variation",
	"path_amplitude",
	"spawn_side",
}

// String returns the config name of the trait.
func (t Trait) String() string {
	if t < NumTraits {
		return traitNames[t]
	}
	return fmt.Sprintf("Trait(%d)", uint8(t))
}

// Side is the map edge an alien spawns on.
type Side uint8

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
	NumSides
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	}
	return "unknown"
}

// ParseSide returns the side with the given name.
func ParseSide(name string) (Side, error) {
	for s := SideTop; s < NumSides; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSide, name)
}

// TraitSpec bounds one trait.
type TraitSpec struct {
	Min, Max         float64
	InitMin, InitMax float64
	Perturb          float64 // Mutation adds uniform(-Perturb, +Perturb)
	Discrete         bool    // Integer valued; mutation resamples uniformly
}

// TraitTable holds the bounds for every trait, indexed by Trait.
type TraitTable [NumTraits]TraitSpec

// NewTraitTable builds the table from config ranges.
func NewTraitTable(cfg config.TraitsConfig) TraitTable {
	var tt TraitTable
	for name, r := range cfg.ByName() {
		for i, n := range traitNames {
			if n != name {
				continue
			}
			tt[i] = TraitSpec{
				Min:     r.Min,
				Max:     r.Max,
				InitMin: r.InitMin,
				InitMax: r.InitMax,
				Perturb: r.Perturb,
			}
		}
	}
	tt[TraitSpawnSide].Discrete = true
	return tt
}

// Clamp restricts v to the trait's range, rounding discrete traits.
func (tt *TraitTable) Clamp(t Trait, v float64) float64 {
	s := &tt[t]
	if s.Discrete {
		v = math.Round(v)
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Sample draws a value uniformly from the trait's initial range.
func (tt *TraitTable) Sample(t Trait, rng *rand.Rand) float64 {
	s := &tt[t]
	if s.Discrete {
		lo, hi := int(math.Ceil(s.InitMin)), int(math.Floor(s.InitMax))
		if hi < lo {
			return tt.Clamp(t, s.InitMin)
		}
		return float64(lo + rng.Intn(hi-lo+1))
	}
	return tt.Clamp(t, s.InitMin+rng.Float64()*(s.InitMax-s.InitMin))
}

// resample draws a discrete trait uniformly over its full range.
func (tt *TraitTable) resample(t Trait, rng *rand.Rand) float64 {
	s := &tt[t]
	lo, hi := int(math.Ceil(s.Min)), int(math.Floor(s.Max))
	if hi < lo {
		return tt.Clamp(t, s.Min)
	}
	return float64(lo + rng.Intn(hi-lo+1))
}
