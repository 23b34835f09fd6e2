package evolution

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/pthm-cable/outpost/config"
)

var (
	// ErrInvalidPopulationSize is returned for a population size below 1.
	ErrInvalidPopulationSize = errors.New("population size must be positive")
	// ErrUnknownPolicy is returned for an unrecognised breeding policy.
	ErrUnknownPolicy = errors.New("unknown evolution policy")
	// ErrUnknownCrossover is returned for an unrecognised crossover mode.
	ErrUnknownCrossover = errors.New("unknown crossover mode")
	// ErrUnknownSide is returned for an unrecognised spawn side name.
	ErrUnknownSide = errors.New("unknown spawn side")
	// ErrUnknownCause is returned for an unrecognised outcome cause name.
	ErrUnknownCause = errors.New("unknown outcome cause")
)

// Policy selects how the next generation is bred.
type Policy uint8

const (
	PolicyElitism   Policy = iota // Carry survivors, fill with offspring
	PolicyMeanDrift               // Mean survivor plus mutated copies
)

// ParsePolicy resolves a config name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "elitism":
		return PolicyElitism, nil
	case "mean_drift":
		return PolicyMeanDrift, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

func (p Policy) String() string {
	if p == PolicyMeanDrift {
		return "mean_drift"
	}
	return "elitism"
}

// Engine owns the population and the fitness records of the current wave.
type Engine struct {
	cfg       config.EvolutionConfig
	policy    Policy
	crossover CrossoverMode
	traits    TraitTable
	rng       *rand.Rand
	ids       *IDGenerator

	population  []Genome
	records     []FitnessRecord
	ledger      *Ledger
	generation  int
	bestFitness float64
	lastStats   FitnessStats
}

// NewEngine validates the config and creates an engine with an initial
// random population of cfg.PopulationSize genomes.
func NewEngine(cfg config.EvolutionConfig, traits config.TraitsConfig, rng *rand.Rand) (*Engine, error) {
	policy, err := ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	crossover, err := ParseCrossoverMode(cfg.Crossover)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		policy:    policy,
		crossover: crossover,
		traits:    NewTraitTable(traits),
		rng:       rng,
		ids:       NewIDGenerator(),
		ledger:    NewLedger(),
	}
	if err := e.InitializePopulation(cfg.PopulationSize); err != nil {
		return nil, err
	}
	return e, nil
}

// InitializePopulation replaces the population with size random genomes
// and resets generation, records and the ledger.
func (e *Engine) InitializePopulation(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPopulationSize, size)
	}
	e.population = make([]Genome, size)
	for i := range e.population {
		e.population[i] = RandomGenome(&e.traits, e.ids, e.rng)
	}
	e.records = e.records[:0]
	e.ledger.Reset()
	e.generation = 0
	e.bestFitness = 0
	e.lastStats = FitnessStats{}
	return nil
}

// Seed overwrites the start of the population with copies of the given
// genomes, clamped to the trait bounds and given fresh IDs. Returns the
// number placed.
func (e *Engine) Seed(genomes []Genome) int {
	n := min(len(genomes), len(e.population))
	for i := 0; i < n; i++ {
		g := ClampGenome(genomes[i], &e.traits)
		g.ID = e.ids.NextID()
		e.population[i] = g
	}
	return n
}

// DrawGenomeForSpawn samples the population uniformly with replacement.
// It counts the spawn in the ledger; population and records are untouched.
func (e *Engine) DrawGenomeForSpawn() Genome {
	g := e.population[e.rng.Intn(len(e.population))]
	e.ledger.Spawned(g.ID)
	return g
}

// RecordOutcome appends a fitness record. Call once per terminal instance.
func (e *Engine) RecordOutcome(g Genome, fitness float64) {
	e.records = append(e.records, FitnessRecord{Genome: g, Fitness: fitness})
	e.ledger.Record(g.ID, fitness)
}

// Evolve breeds the next generation from the recorded outcomes.
// With no records it does nothing and returns false.
func (e *Engine) Evolve() bool {
	if len(e.records) == 0 {
		return false
	}

	sorted := append([]FitnessRecord(nil), e.records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})

	values := make([]float64, len(sorted))
	for i, r := range sorted {
		values[i] = r.Fitness
	}
	e.lastStats = ComputeFitnessStats(values)
	if sorted[0].Fitness > e.bestFitness {
		e.bestFitness = sorted[0].Fitness
	}

	parents := dedupe(e.selectSurvivors(sorted))
	size := len(e.population)

	switch e.policy {
	case PolicyMeanDrift:
		e.population = e.breedMeanDrift(parents, size)
	default:
		e.population = e.breedElitism(parents, size)
	}

	e.records = e.records[:0]
	e.generation++
	e.ledger.Retain(e.population)

	slog.Debug("population evolved",
		"generation", e.generation,
		"policy", e.policy.String(),
		"survivors", len(parents),
		"fitness", e.lastStats,
	)
	return true
}

// selectSurvivors picks from records sorted best first. Never returns empty.
func (e *Engine) selectSurvivors(sorted []FitnessRecord) []FitnessRecord {
	if e.cfg.SurvivorThreshold > 0 {
		n := 0
		for n < len(sorted) && sorted[n].Fitness >= e.cfg.SurvivorThreshold {
			n++
		}
		if n > 0 {
			return sorted[:n]
		}
		return sorted[:fractionCount(len(sorted), e.cfg.FallbackFraction)]
	}
	return sorted[:fractionCount(len(sorted), e.cfg.SurvivorFraction)]
}

// fractionCount returns floor(n*frac) clamped to [1, n].
func fractionCount(n int, frac float64) int {
	k := int(math.Floor(float64(n) * frac))
	return max(1, min(n, k))
}

// dedupe keeps the first record of each genome ID.
func dedupe(records []FitnessRecord) []Genome {
	seen := make(map[GenomeID]struct{}, len(records))
	out := make([]Genome, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Genome.ID]; ok {
			continue
		}
		seen[r.Genome.ID] = struct{}{}
		out = append(out, r.Genome)
	}
	return out
}

// breedElitism carries parents over unchanged and fills the rest with offspring.
func (e *Engine) breedElitism(parents []Genome, size int) []Genome {
	next := make([]Genome, 0, size)
	for _, p := range parents[:min(len(parents), size)] {
		next = append(next, ClampGenome(p, &e.traits))
	}

	for len(next) < size {
		if len(parents) >= 2 && e.rng.Float64() < e.cfg.CrossoverChance {
			i := e.rng.Intn(len(parents))
			j := e.rng.Intn(len(parents) - 1)
			if j >= i {
				j++
			}
			child := Crossover(parents[i], parents[j], e.crossover, &e.traits, e.ids, e.rng)
			child = e.mutate(child, e.cfg.CrossoverMutationRate, 1)
			next = append(next, child)
			continue
		}
		p := parents[e.rng.Intn(len(parents))]
		next = append(next, e.mutate(p, e.cfg.MutationRate, 1))
	}
	return next
}

// breedMeanDrift builds the mean parent and size-1 drifted copies of it.
func (e *Engine) breedMeanDrift(parents []Genome, size int) []Genome {
	mean := MeanGenome(parents, &e.traits, e.ids)
	next := make([]Genome, 0, size)
	next = append(next, mean)
	for len(next) < size {
		next = append(next, e.mutate(mean, e.cfg.DriftMutationRate, e.cfg.DriftMagnitude))
	}
	return next
}

func (e *Engine) mutate(g Genome, rate, scale float64) Genome {
	return Mutate(g, rate, scale, &e.traits, e.ids, e.rng)
}

// Generation returns the number of completed evolve steps.
func (e *Engine) Generation() int { return e.generation }

// BestFitness returns the highest fitness seen across all evolved records.
func (e *Engine) BestFitness() float64 { return e.bestFitness }

// Population returns a copy of the current population.
func (e *Engine) Population() []Genome {
	return append([]Genome(nil), e.population...)
}

// PendingRecords returns the number of records waiting for the next evolve.
func (e *Engine) PendingRecords() int { return len(e.records) }

// Records returns a copy of the pending records.
func (e *Engine) Records() []FitnessRecord {
	return append([]FitnessRecord(nil), e.records...)
}

// Ledger returns the per-genome ledger. Callers must not modify it.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// LastStats returns fitness statistics from the most recent evolve.
func (e *Engine) LastStats() FitnessStats { return e.lastStats }

// Traits returns the trait table the engine clamps against.
func (e *Engine) Traits() *TraitTable { return &e.traits }

// Policy returns the breeding policy in use.
func (e *Engine) Policy() Policy { return e.policy }
