package evolution

import (
	"fmt"
	"math/rand"
)

// CrossoverMode selects how two parents are combined.
type CrossoverMode uint8

const (
	CrossoverUniform CrossoverMode = iota // Per-trait coin flip
	CrossoverBlend                        // Midpoint; coin flip for discrete traits
)

// ParseCrossoverMode resolves a config name.
func ParseCrossoverMode(name string) (CrossoverMode, error) {
	switch name {
	case "", "uniform":
		return CrossoverUniform, nil
	case "blend":
		return CrossoverBlend, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCrossover, name)
}

func (m CrossoverMode) String() string {
	if m == CrossoverBlend {
		return "blend"
	}
	return "uniform"
}

// Mutate returns a copy of g where each trait, with probability rate, is
// perturbed by uniform(-perturb*scale, +perturb*scale). Discrete traits are
// resampled instead. Every trait of the copy is clamped and it gets a fresh ID.
func Mutate(g Genome, rate, scale float64, tt *TraitTable, ids *IDGenerator, rng *rand.Rand) Genome {
	child := Genome{ID: ids.NextID(), Traits: g.Traits}
	for t := Trait(0); t < NumTraits; t++ {
		if rng.Float64() < rate {
			if tt[t].Discrete {
				child.Traits[t] = tt.resample(t, rng)
				continue
			}
			child.Traits[t] += (rng.Float64()*2 - 1) * tt[t].Perturb * scale
		}
		child.Traits[t] = tt.Clamp(t, child.Traits[t])
	}
	return child
}

// Crossover combines two parents into a child with a fresh ID.
func Crossover(a, b Genome, mode CrossoverMode, tt *TraitTable, ids *IDGenerator, rng *rand.Rand) Genome {
	child := Genome{ID: ids.NextID()}
	for t := Trait(0); t < NumTraits; t++ {
		if mode == CrossoverBlend && !tt[t].Discrete {
			child.Traits[t] = tt.Clamp(t, (a.Traits[t]+b.Traits[t])*0.5)
			continue
		}
		v := b.Traits[t]
		if rng.Float64() < 0.5 {
			v = a.Traits[t]
		}
		child.Traits[t] = tt.Clamp(t, v)
	}
	return child
}

// ClampGenome returns g with every trait clamped. The ID is kept.
func ClampGenome(g Genome, tt *TraitTable) Genome {
	for t := Trait(0); t < NumTraits; t++ {
		g.Traits[t] = tt.Clamp(t, g.Traits[t])
	}
	return g
}

// MeanGenome averages the traits of a non-empty set of genomes.
// Discrete traits are rounded to the nearest valid value.
func MeanGenome(gs []Genome, tt *TraitTable, ids *IDGenerator) Genome {
	mean := Genome{ID: ids.NextID()}
	for _, g := range gs {
		for t := Trait(0); t < NumTraits; t++ {
			mean.Traits[t] += g.Traits[t]
		}
	}
	n := float64(len(gs))
	for t := Trait(0); t < NumTraits; t++ {
		mean.Traits[t] = tt.Clamp(t, mean.Traits[t]/n)
	}
	return mean
}
