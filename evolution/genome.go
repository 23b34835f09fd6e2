package evolution

import (
	"log/slog"
	"math/rand"
)

// GenomeID identifies a genome. IDs are never reused within an engine.
type GenomeID uint64

// Genome is an immutable trait vector. Breeding produces new genomes
// with new IDs; survivors carried into the next generation keep theirs.
type Genome struct {
	ID     GenomeID
	Traits [NumTraits]float64
}

// Trait returns the value of one trait.
func (g Genome) Trait(t Trait) float64 {
	return g.Traits[t]
}

// Phenotype is a genome decoded into the values live aliens use.
type Phenotype struct {
	Health        float64
	Speed         float64 // Pixels per frame at 60 fps
	Armor         float64
	Size          float64
	PathVariation float64 // Phase of the sine path offset
	PathAmplitude float64
	SpawnSide     Side
}

// Decode expands the genome into a phenotype.
func (g Genome) Decode() Phenotype {
	side := int(g.Traits[TraitSpawnSide] + 0.5)
	if side < 0 || side >= int(NumSides) {
		side = 0
	}
	return Phenotype{
		Health:        g.Traits[TraitHealth],
		Speed:         g.Traits[TraitSpeed],
		Armor:         g.Traits[TraitArmor],
		Size:          g.Traits[TraitSize],
		PathVariation: g.Traits[TraitPathVariation],
		PathAmplitude: g.Traits[TraitPathAmplitude],
		SpawnSide:     Side(side),
	}
}

// LogValue implements slog.LogValuer.
func (g Genome) LogValue() slog.Value {
	p := g.Decode()
	return slog.GroupValue(
		slog.Uint64("id", uint64(g.ID)),
		slog.Float64("health", p.Health),
		slog.Float64("speed", p.Speed),
		slog.Float64("armor", p.Armor),
		slog.Float64("size", p.Size),
		slog.String("side", p.SpawnSide.String()),
	)
}

// IDGenerator hands out genome IDs.
type IDGenerator struct {
	nextID GenomeID
}

// NewIDGenerator creates a generator starting at 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{nextID: 1}
}

// NextID returns the next unique genome ID.
func (g *IDGenerator) NextID() GenomeID {
	id := g.nextID
	g.nextID++
	return id
}

// RandomGenome samples every trait from its initial range.
func RandomGenome(tt *TraitTable, ids *IDGenerator, rng *rand.Rand) Genome {
	g := Genome{ID: ids.NextID()}
	for t := Trait(0); t < NumTraits; t++ {
		g.Traits[t] = tt.Sample(t, rng)
	}
	return g
}
